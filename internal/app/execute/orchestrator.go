// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/te2run/te2run/internal/binding"
	"github.com/te2run/te2run/internal/config"
	"github.com/te2run/te2run/internal/counter"
	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/functions"
	"github.com/te2run/te2run/internal/issue"
	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/internal/pathres"
	"github.com/te2run/te2run/internal/report"
	"github.com/te2run/te2run/internal/services"
)

// ErrIssuesPresent is returned when execution is skipped because the script
// has error issues.
var ErrIssuesPresent = errors.New("script has issues")

type (
	// Request describes one run.
	Request struct {
		// ScriptPath is the script to run.
		ScriptPath string
		// Variables are the external variable values by name.
		Variables map[string]string
		// Compile configures engine selection and compilation.
		Compile CompileOptions
		// FailOnIssues skips execution when the script has error issues.
		FailOnIssues bool
		// Database and Counter configure the built-in function services.
		Database *services.DatabasePreferences
		Counter  *services.CounterPreferences
	}

	// Result describes what a run did.
	Result struct {
		Issues  []engine.Issue
		Binding *binding.Summary
		// Executed is false when the run stopped before Execute.
		Executed bool
		Elapsed  time.Duration
		Output   binding.Report
	}

	// Runner runs scripts. Zero-valued streams default to the process streams.
	Runner struct {
		Logger logging.Logger
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// RequestFromConfig builds a request for path from the loaded configuration.
// Variables still need to be merged by the caller.
func RequestFromConfig(path string, cfg *config.Config) Request {
	req := Request{
		ScriptPath: path,
		Compile: CompileOptions{
			Engine:     cfg.Engine,
			WorkingDir: cfg.WorkingDir,
			Strict:     cfg.Strict,
			Trace:      cfg.Trace,
		},
		FailOnIssues: cfg.FailOnIssues,
		Counter: &services.CounterPreferences{
			Store: cfg.Counter.Store,
			Table: cfg.Counter.Table,
		},
	}
	if cfg.Database.Driver != "" {
		req.Database = &services.DatabasePreferences{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}
	}
	return req
}

// NewRunner creates a Runner on the process streams.
func NewRunner(logger logging.Logger) *Runner {
	return &Runner{Logger: logger, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run compiles, binds, executes and harvests the script of req. The issue
// list, the completion message and the output variables are written to
// Stdout. A partial Result is returned alongside errors that occur after
// compilation.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	compiled, err := Compile(req.ScriptPath, req.Compile)
	if err != nil {
		return nil, err
	}

	registry := functions.NewRegistry()
	if err := counter.Install(registry); err != nil {
		return nil, fmt.Errorf("failed to register counter functions: %w", err)
	}

	unit := compiled.CreateExecutable(registry)
	unit.SetLogger(logger)
	if s, ok := unit.(engine.StdioSetter); ok {
		s.SetStdio(r.Stdin, r.Stdout, r.Stderr)
	}

	result := &Result{Issues: unit.Issues()}

	resolver, err := pathres.ForWorkingDir(req.Compile.WorkingDir)
	if err != nil {
		return result, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	binder := binding.NewBinder(logger)
	binder.ResolveFile = resolver.GetPath
	summary, err := binder.Bind(unit, req.Variables)
	result.Binding = summary
	if err != nil {
		return result, issue.NewErrorContext().
			WithOperation("bind variables").
			WithResource(req.ScriptPath).
			WithIssue(issue.BindingFailedId).
			Wrap(err).
			BuildError()
	}

	svc, err := services.NewProvider(ctx, req.Database, req.Counter)
	if err != nil {
		return result, issue.NewErrorContext().
			WithOperation("open services").
			WithIssue(issue.DatabaseUnavailableId).
			Wrap(err).
			BuildError()
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			logging.Logf(logger, logging.LevelWarn, "failed to close services: %v", cerr)
		}
	}()
	unit.SetServiceProvider(svc)

	if len(result.Issues) > 0 {
		_, _ = fmt.Fprint(stdout, report.Issues(result.Issues))
		for _, is := range result.Issues {
			level := logging.LevelWarn
			if is.Severity == engine.SeverityError {
				level = logging.LevelError
			}
			logger.Log(level, is.String())
		}
		if req.FailOnIssues && engine.HasErrors(result.Issues) {
			return result, issue.NewErrorContext().
				WithOperation("run script").
				WithResource(req.ScriptPath).
				WithIssue(issue.ScriptIssuesId).
				WithSuggestion("Fix the issues listed above").
				Wrap(ErrIssuesPresent).
				BuildError()
		}
	}

	start := time.Now()
	err = unit.Execute(ctx)
	result.Elapsed = time.Since(start)
	result.Executed = true
	if err != nil {
		return result, issue.NewErrorContext().
			WithOperation("run script").
			WithResource(req.ScriptPath).
			WithIssue(issue.ExecutionFailedId).
			Wrap(err).
			BuildError()
	}

	_, _ = fmt.Fprintf(stdout, "\n%s\n", report.Completed(result.Elapsed))

	result.Output = binding.Harvest(unit)
	_, _ = fmt.Fprint(stdout, result.Output.String())
	return result, nil
}
