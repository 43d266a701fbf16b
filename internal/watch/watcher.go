// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs work when a set of files changes.
//
// A Watcher tracks an explicit list of files (a script, its includes and the
// files bound to its input variables) plus, optionally, every file under a
// base directory matching doublestar patterns. Events are debounced so one
// editor save produces one callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// ErrNothingToWatch is returned when Config selects no files and no patterns.
var ErrNothingToWatch = errors.New("watch: no files or patterns to watch")

// defaultIgnores are never matched by Patterns.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters of a Watcher.
	Config struct {
		// Files are watched individually. Their directories must exist.
		Files []string
		// Patterns are doublestar globs relative to BaseDir selecting
		// additional files.
		Patterns []string
		// BaseDir roots Patterns. Empty means the current directory.
		BaseDir string
		// Debounce is the quiet period before OnChange fires.
		Debounce time.Duration
		// ClearScreen writes an ANSI clear sequence to Stdout before OnChange.
		ClearScreen bool
		// OnChange receives the changed paths, sorted.
		OnChange func(ctx context.Context, changed []string) error

		Stdout io.Writer
		Stderr io.Writer
	}

	// Watcher runs Config.OnChange after changes. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		files    map[string]bool
		baseDir  string
		debounce time.Duration
		stdout   io.Writer
		stderr   io.Writer
		started  atomic.Bool
	}
)

// New validates cfg and registers the watched directories.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 && len(cfg.Patterns) == 0 {
		return nil, ErrNothingToWatch
	}
	for _, pat := range cfg.Patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		files:    make(map[string]bool, len(cfg.Files)),
		baseDir:  absBase,
		debounce: cfg.Debounce,
		stdout:   cfg.Stdout,
		stderr:   cfg.Stderr,
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}

	dirs := map[string]bool{}
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if len(cfg.Patterns) > 0 {
		if err := w.collectDirs(dirs); err != nil {
			_ = w.fsw.Close()
			return nil, err
		}
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := w.fsw.Add(dir); err != nil {
			_ = w.fsw.Close()
			return nil, fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes events until ctx is done. It returns nil on cancellation and
// an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = map[string]struct{}{}
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			// retry once the current callback is done
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 {
			return
		}

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: %v\n", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			fmt.Fprintf(w.stderr, "watch: close: %v\n", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			name, ok := w.match(evt.Name)
			if !ok {
				continue
			}
			mu.Lock()
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			fmt.Fprintf(w.stderr, "watch: %v\n", err)
		}
	}
}

// match reports whether path is watched and returns the name passed to
// OnChange: the path as given for Files, relative to BaseDir for Patterns.
func (w *Watcher) match(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if w.files[abs] {
		return path, true
	}
	rel, err := filepath.Rel(w.baseDir, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if matchAny(defaultIgnores, rel) {
		return "", false
	}
	if matchAny(w.cfg.Patterns, rel) {
		return rel, true
	}
	return "", false
}

// collectDirs adds every directory under baseDir that is not ignored.
func (w *Watcher) collectDirs(dirs map[string]bool) error {
	err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(w.stderr, "watch: skipping %q: %v\n", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(w.baseDir, path)
		if rel != "." && matchAny(defaultIgnores, filepath.ToSlash(rel)+"/x") {
			return filepath.SkipDir
		}
		dirs[path] = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", w.baseDir, err)
	}
	return nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
