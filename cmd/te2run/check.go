// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/te2run/te2run/internal/app/execute"
	"github.com/te2run/te2run/internal/config"
	"github.com/te2run/te2run/internal/engine"
)

func newCheckCommand(app *App) *cobra.Command {
	var engineName string
	cmd := &cobra.Command{
		Use:   "check SCRIPT",
		Short: "Compile a script and list its issues without running it",
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
			return printIssues(cmd, unit)
		},
	}
	cmd.Flags().StringVar(&engineName, "engine", "", "force the engine: shell or js")
	return cmd
}

func printIssues(cmd *cobra.Command, unit engine.CompiledUnit) error {
	out := cmd.OutOrStdout()
	issues := unit.Issues()

	fmt.Fprintf(out, "%s %s (%s dialect, %d variable(s))\n",
		TitleStyle.Render("Checked"), unit.Path(), unit.Dialect(), len(unit.Declarations()))

	if len(issues) == 0 {
		fmt.Fprintln(out, SuccessStyle.Render("✓ no issues"))
		return nil
	}

	for _, is := range issues {
		style := WarningStyle
		if is.Severity == engine.SeverityError {
			style = ErrorStyle
		}
		fmt.Fprintln(out, "  "+style.Render(is.Severity.String()+":")+" "+location(is)+is.Message)
	}

	if engine.HasErrors(issues) {
		cmd.SilenceErrors = true
		return &ExitError{Code: ExitInvalidScript}
	}
	return nil
}

func location(is engine.Issue) string {
	if is.File == "" {
		return ""
	}
	return SubtitleStyle.Render(fmt.Sprintf("%s:%d:", is.File, is.Line)) + " "
}
