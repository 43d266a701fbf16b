// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/te2run/te2run/internal/app/execute"
	"github.com/te2run/te2run/internal/config"
)

type runFlags struct {
	vars         []string
	varFiles     []string
	engine       string
	strict       bool
	trace        bool
	failOnIssues bool
	workingDir   string
	watch        bool
	watchGlobs   []string
	debounce     time.Duration
	clearScreen  bool
}

func newRunCommand(app *App) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Compile and run a script",
		Long: `Compile and run a script.

Variable values are taken, in increasing priority, from the configuration
file, the configured var_files, --var-file and --var. Input and output
variables take file paths. Paths starting with / are taken relative to
--working-dir (the current directory by default); pass absolute host
paths as file:///abs/path URIs.

With --watch the script runs again whenever it, one of its includes or a
file bound to an input variable changes. Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, app, flags, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&flags.vars, "var", nil, "set a variable (NAME=VALUE, repeatable)")
	cmd.Flags().StringArrayVar(&flags.varFiles, "var-file", nil, "load variables from a .env, .yaml, .toml, .hcl or .cue file (repeatable, suffix ? for optional)")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "force the engine: shell or js")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "compile JavaScript in strict mode")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "print shell commands as they run")
	cmd.Flags().BoolVar(&flags.failOnIssues, "fail-on-issues", false, "do not run scripts that have errors in their directives")
	cmd.Flags().StringVar(&flags.workingDir, "working-dir", "", "directory prefixed to paths starting with / (default: current directory)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run the script when its files change")
	cmd.Flags().StringArrayVar(&flags.watchGlobs, "watch-pattern", nil, "additional glob of files that trigger a re-run (repeatable)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 300*time.Millisecond, "quiet period before a re-run")
	cmd.Flags().BoolVar(&flags.clearScreen, "clear", false, "clear the terminal before each re-run")
	return cmd
}

func runScript(cmd *cobra.Command, app *App, flags *runFlags, script string) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return app.fail(cmd, ExitFailure, err)
	}
	applyRunFlags(cmd, cfg, flags)

	logger, err := app.logger(cmd, cfg)
	if err != nil {
		return app.fail(cmd, ExitFailure, err)
	}

	values, err := execute.MergeVariables(execute.VariableSources{
		Config:      cfg.Variables,
		Files:       append(cfg.VarFiles, flags.varFiles...),
		Assignments: flags.vars,
	})
	if err != nil {
		return app.fail(cmd, ExitFailure, err)
	}

	req := execute.RequestFromConfig(script, cfg)
	req.Variables = values

	runner := &execute.Runner{
		Logger: logger,
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	if flags.watch || len(flags.watchGlobs) > 0 {
		err := runner.Watch(cmd.Context(), req, execute.WatchOptions{
			Patterns:    flags.watchGlobs,
			Debounce:    flags.debounce,
			ClearScreen: flags.clearScreen,
			OnError: func(err error) {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.verbose))
			},
		})
		if err != nil {
			return app.fail(cmd, ExitFailure, err)
		}
		return nil
	}

	if _, err := runner.Run(cmd.Context(), req); err != nil {
		return app.fail(cmd, exitCodeFor(err), err)
	}
	return nil
}

// applyRunFlags overrides configuration values with the flags the user set.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags *runFlags) {
	f := cmd.Flags()
	if f.Changed("engine") {
		cfg.Engine = config.EngineMode(flags.engine)
	}
	if f.Changed("strict") {
		cfg.Strict = flags.strict
	}
	if f.Changed("trace") {
		cfg.Trace = flags.trace
	}
	if f.Changed("fail-on-issues") {
		cfg.FailOnIssues = flags.failOnIssues
	}
	if f.Changed("working-dir") {
		cfg.WorkingDir = flags.workingDir
	}
}
