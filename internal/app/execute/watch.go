// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/internal/pathres"
	"github.com/te2run/te2run/internal/watch"
	"github.com/te2run/te2run/pkg/extvar"
)

// WatchOptions configures Runner.Watch.
type WatchOptions struct {
	// Patterns are extra doublestar globs, relative to the working
	// directory, whose changes re-run the script.
	Patterns []string
	Debounce time.Duration
	// ClearScreen clears the terminal before each re-run.
	ClearScreen bool
	// OnError receives the error of each failed run. Nil logs it.
	OnError func(error)
}

// Watch runs req once and then again each time the script, one of its
// includes or a file bound to an input variable changes. It returns when ctx
// is done or the file watcher fails.
func (r *Runner) Watch(ctx context.Context, req Request, opts WatchOptions) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	report := opts.OnError
	if report == nil {
		report = func(err error) {
			logging.Logf(logger, logging.LevelError, "%v", err)
		}
	}

	runOnce := func(ctx context.Context) {
		if _, err := r.Run(ctx, req); err != nil {
			report(err)
		}
	}
	runOnce(ctx)

	resolver, err := pathres.ForWorkingDir(req.Compile.WorkingDir)
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	var files []string
	if unit, err := Compile(req.ScriptPath, req.Compile); err == nil {
		files = watchedFiles(unit, req.Variables, resolver)
	} else if path, err := resolver.GetPath(req.ScriptPath); err == nil {
		files = []string{path}
	} else {
		return fmt.Errorf("failed to watch %s: %w", req.ScriptPath, err)
	}

	w, err := watch.New(watch.Config{
		Files:       files,
		Patterns:    opts.Patterns,
		BaseDir:     req.Compile.WorkingDir,
		Debounce:    opts.Debounce,
		ClearScreen: opts.ClearScreen,
		Stdout:      r.Stdout,
		Stderr:      r.Stderr,
		OnChange: func(ctx context.Context, changed []string) error {
			logging.Logf(logger, logging.LevelInfo, "change detected: %v", changed)
			runOnce(ctx)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", req.ScriptPath, err)
	}
	logging.Logf(logger, logging.LevelInfo, "watching %d file(s)", len(files))
	return w.Run(ctx)
}

// WatchedFiles returns the local files a run of unit depends on: every
// compiled part and the files bound to input variables. Output files are
// left out since the run itself writes them.
func WatchedFiles(unit engine.CompiledUnit, req Request) ([]string, error) {
	resolver, err := pathres.ForWorkingDir(req.Compile.WorkingDir)
	if err != nil {
		return nil, err
	}
	return watchedFiles(unit, req.Variables, resolver), nil
}

func watchedFiles(unit engine.CompiledUnit, values map[string]string, resolver *pathres.FileResolver) []string {
	files := unit.Sources()
	for _, d := range unit.Declarations() {
		if d.Kind != extvar.KindInput {
			continue
		}
		value, ok := values[d.Name]
		if !ok || value == "" || pathres.IsRemote(value) {
			continue
		}
		path, err := resolver.GetPath(value)
		if err != nil {
			continue
		}
		files = append(files, path)
	}
	slices.Sort(files)
	return slices.Compact(files)
}
