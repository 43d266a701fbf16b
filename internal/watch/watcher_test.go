// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// startWatcher runs w until the test ends and returns the callback channel.
func startWatcher(t *testing.T, cfg Config) <-chan []string {
	t.Helper()

	calls := make(chan []string, 10)
	cfg.Debounce = 50 * time.Millisecond
	cfg.Stdout = &bytes.Buffer{}
	cfg.Stderr = &bytes.Buffer{}
	cfg.OnChange = func(_ context.Context, changed []string) error {
		calls <- changed
		return nil
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	})
	return calls
}

func waitCall(t *testing.T, calls <-chan []string) []string {
	t.Helper()
	select {
	case changed := <-calls:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
		return nil
	}
}

func TestWatcher_WatchedFileDebounced(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "job.te2")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, script, "echo 1\n")

	calls := startWatcher(t, Config{Files: []string{script}})

	writeFile(t, other, "ignored")
	for i := range 3 {
		writeFile(t, script, "echo "+string(rune('2'+i))+"\n")
		time.Sleep(5 * time.Millisecond)
	}

	changed := waitCall(t, calls)
	if !slices.Equal(changed, []string{script}) {
		t.Errorf("changed = %v, want [%s]", changed, script)
	}

	select {
	case extra := <-calls:
		t.Errorf("unexpected extra callback: %v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Patterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}

	calls := startWatcher(t, Config{BaseDir: dir, Patterns: []string{"**/*.te2"}})

	writeFile(t, filepath.Join(dir, "notes.md"), "x")
	writeFile(t, filepath.Join(dir, "lib", "util.te2"), "f() { :; }\n")

	changed := waitCall(t, calls)
	if !slices.Equal(changed, []string{"lib/util.te2"}) {
		t.Errorf("changed = %v", changed)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrNothingToWatch) {
		t.Errorf("expected ErrNothingToWatch, got %v", err)
	}
	if _, err := New(Config{Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("expected invalid pattern error")
	}
	if _, err := New(Config{Files: []string{filepath.Join(t.TempDir(), "missing", "x.te2")}}); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{Files: []string{filepath.Join(dir, "a")}, Stderr: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := w.Run(ctx); err == nil {
		t.Error("second Run should fail")
	}
}

func TestMatchAny_DefaultIgnores(t *testing.T) {
	t.Parallel()

	for _, rel := range []string{".git/config", "a/.git/HEAD", "x.te2.swp", "x.te2~", ".DS_Store"} {
		if !matchAny(defaultIgnores, rel) {
			t.Errorf("%s should be ignored", rel)
		}
	}
	if matchAny(defaultIgnores, "job.te2") {
		t.Error("job.te2 must not be ignored")
	}
}
