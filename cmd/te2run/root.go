// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/te2run/te2run/internal/config"
	"github.com/te2run/te2run/internal/issue"
	"github.com/te2run/te2run/internal/logging"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App wires CLI dependencies. Every command handler receives it.
	App struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// set from persistent flags
		configPath string
		logLevel   string
		verbose    bool
	}
)

// NewApp creates an App using the CUE configuration provider and the
// process streams.
func NewApp() *App {
	return &App{
		Config: config.NewProvider(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "te2run",
		Short: "Compile and run scripts with bound external variables",
		Long: TitleStyle.Render("te2run") + SubtitleStyle.Render(" - compile and run scripts with bound external variables") + `

te2run compiles a script, binds its external variables (primitive values,
input files and output files), runs it with the counter functions installed
and prints the primitive variables afterwards.

Scripts declare their variables with directive comments:

  # @extern primitive name      (shell dialect: .te2, .sh)
  // @extern input data          (JavaScript dialect: .js)

` + SubtitleStyle.Render("Examples:") + `
  te2run run job.te2 --var name=world --var data=in.txt
  te2run run job.te2 --var-file vars.yaml --watch
  te2run check job.te2
  te2run vars job.js
  te2run config show`,
		SilenceUsage: true,
	}
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is <user config dir>/te2run/config.cue)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log threshold: error, warn, info, debug or trace")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "show error chains and remediation guidance")

	root.AddCommand(
		newRunCommand(app),
		newCheckCommand(app),
		newVarsCommand(app),
		newConfigCommand(app),
		newExplainCommand(app),
	)
	return root
}

// Execute runs the CLI and exits the process on failure.
// This is called by main.main().
func Execute() {
	app := NewApp()
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// loadConfig loads the configuration and applies the persistent flags.
func (app *App) loadConfig(ctx context.Context) (*config.Config, error) {
	loaded, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config
	if app.logLevel != "" {
		cfg.LogLevel = app.logLevel
	}
	return cfg, nil
}

func (app *App) logger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriters(level, cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}

// fail prints err with its suggestions and returns an ExitError carrying
// code.
func (app *App) fail(cmd *cobra.Command, code int, err error) error {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, app.verbose))
	if app.verbose {
		if id, ok := issue.IDOf(err); ok {
			if rendered, rerr := issue.Get(id).Render("notty"); rerr == nil {
				fmt.Fprint(stderr, rendered)
			}
		}
	}
	cmd.SilenceErrors = true
	return &ExitError{Code: code}
}

// formatErrorForDisplay uses the ActionableError layout when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// exitCodeFor maps a run error to the process exit code.
func exitCodeFor(err error) int {
	if id, ok := issue.IDOf(err); ok {
		switch id {
		case issue.CompileFailedId, issue.ScriptIssuesId, issue.ScriptNotFoundId:
			return ExitInvalidScript
		}
	}
	return ExitFailure
}
