// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/te2run/te2run/internal/config"
)

// newConfigCommand creates the `te2run config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage te2run configuration",
		Long: `Manage te2run configuration.

Configuration is stored in config.cue under the user configuration directory:
  - Linux: ~/.config/te2run/config.cue
  - macOS: ~/Library/Application Support/te2run/config.cue
  - Windows: %AppData%\te2run\config.cue

A .te2run.cue file in the current directory is used when that file is absent.
Environment variables such as TE2RUN_LOG_LEVEL override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var dump bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configPath})
			if err != nil {
				return app.fail(cmd, ExitFailure, err)
			}
			if dump {
				fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(loaded.Config))
				return nil
			}
			showConfig(cmd, loaded.Config, loaded.Path)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&dump, "cue", false, "print the configuration in CUE format")

	var dir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return app.fail(cmd, ExitFailure, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("✓ configuration at"), path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&dir, "dir", "", "directory to create config.cue in")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, ExitFailure, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir+"/"+config.ConfigFileName+"."+config.ConfigFileExt)
			return nil
		},
	}

	cfgCmd.AddCommand(showCmd, initCmd, pathCmd)
	return cfgCmd
}

func showConfig(cmd *cobra.Command, cfg *config.Config, path string) {
	out := cmd.OutOrStdout()
	key := CmdStyle.Render
	val := SuccessStyle.Render

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if path == "" {
		fmt.Fprintf(out, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(out, "%s: %s\n", key("Config file"), path)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", key("log_level"), val(cfg.LogLevel))
	fmt.Fprintf(out, "%s: %s\n", key("engine"), val(string(cfg.Engine)))
	fmt.Fprintf(out, "%s: %s\n", key("strict"), val(fmt.Sprint(cfg.Strict)))
	fmt.Fprintf(out, "%s: %s\n", key("trace"), val(fmt.Sprint(cfg.Trace)))
	fmt.Fprintf(out, "%s: %s\n", key("fail_on_issues"), val(fmt.Sprint(cfg.FailOnIssues)))
	if cfg.WorkingDir != "" {
		fmt.Fprintf(out, "%s: %s\n", key("working_dir"), val(cfg.WorkingDir))
	}
	if len(cfg.VarFiles) > 0 {
		fmt.Fprintf(out, "%s: %s\n", key("var_files"), val(strings.Join(cfg.VarFiles, ", ")))
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Variables)) {
		fmt.Fprintf(out, "%s: %s\n", key("variables."+name), val(cfg.Variables[name]))
	}
	fmt.Fprintf(out, "%s: %s\n", key("counter.store"), val(cfg.Counter.Store))
	fmt.Fprintf(out, "%s: %s\n", key("counter.table"), val(cfg.Counter.Table))
	if cfg.Database.Driver != "" {
		fmt.Fprintf(out, "%s: %s\n", key("database.driver"), val(cfg.Database.Driver))
	}
}
