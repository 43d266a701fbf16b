// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/te2run/te2run/internal/issue"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "explain [ID]",
		Short: "Explain a te2run error and how to fix it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, is := range issue.Values() {
					fmt.Fprintf(out, "%s  %s\n", CmdStyle.Render(fmt.Sprintf("%3d", is.Id())), is.Title())
				}
				return nil
			}

			n, err := strconv.Atoi(args[0])
			entry := issue.Get(issue.Id(n))
			if err != nil || entry == nil {
				return app.fail(cmd, ExitFailure, fmt.Errorf("unknown issue %q (run 'te2run explain' for the list)", args[0]))
			}
			rendered, err := entry.Render(style)
			if err != nil {
				return app.fail(cmd, ExitFailure, err)
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light or notty")
	return cmd
}
