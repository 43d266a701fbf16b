// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/te2run/te2run/internal/app/execute"
	"github.com/te2run/te2run/internal/binding"
	"github.com/te2run/te2run/internal/config"
	"github.com/te2run/te2run/pkg/extvar"
)

func newVarsCommand(app *App) *cobra.Command {
	var engineName string
	cmd := &cobra.Command{
		Use:   "vars SCRIPT",
		Short: "List the external variables a script declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(cmd, ExitFailure, err)
			}
			opts := execute.RequestFromConfig(args[0], cfg).Compile
			if engineName != "" {
				opts.Engine = config.EngineMode(engineName)
			}

			unit, err := execute.Compile(args[0], opts)
			if err != nil {
				return app.fail(cmd, ExitInvalidScript, err)
			}

			decls := unit.Declarations()
			if len(decls) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("no external variables"))
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(SubtitleStyle).
				Headers("NAME", "KIND", "BINDING", "SUPPLY").
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return tableHeaderStyle
					}
					return tableCellStyle
				})
			for _, d := range decls {
				strategy := binding.Classify(d.Kind)
				t.Row(d.Name, d.Kind.String(), strategy.String(), supplyHint(d.Name, d.Kind, strategy))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&engineName, "engine", "", "force the engine: shell or js")
	return cmd
}

// supplyHint tells the user how a variable receives its value on the run
// command line.
func supplyHint(name string, kind extvar.Kind, strategy binding.Strategy) string {
	switch {
	case strategy.Binds() && kind.IsStream():
		return fmt.Sprintf("--var %s=PATH", name)
	case strategy.Binds():
		return fmt.Sprintf("--var %s=VALUE", name)
	case kind.IsArray():
		return "not bound (arrays unsupported)"
	default:
		return "not bound"
	}
}
