// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/te2run/te2run/internal/testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchedFiles(t *testing.T) {
	t.Parallel()

	req := Request{
		ScriptPath: "testdata/harness.te2",
		Variables: map[string]string{
			"name":   "world",
			"source": "testdata/source.txt",
			"sink":   "testdata/never-watched.txt",
		},
	}
	unit, err := Compile(req.ScriptPath, req.Compile)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := []string{
		"testdata/harness.te2",
		"testdata/lib/greet.te2",
		"testdata/source.txt",
	}
	got, err := WatchedFiles(unit, req)
	if err != nil {
		t.Fatalf("WatchedFiles failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WatchedFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchedFiles_SkipsRemoteInputs(t *testing.T) {
	t.Parallel()

	req := Request{
		ScriptPath: "testdata/harness.te2",
		Variables:  map[string]string{"source": "https://example.com/data.txt"},
	}
	unit, err := Compile(req.ScriptPath, req.Compile)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := []string{"testdata/harness.te2", "testdata/lib/greet.te2"}
	got, err := WatchedFiles(unit, req)
	if err != nil {
		t.Fatalf("WatchedFiles failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WatchedFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestWatch_RerunsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "main.te2")
	if err := os.WriteFile(script, []byte("# @extern primitive state\nte2_set state first\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout := &syncBuffer{}
	runner := &Runner{Stdin: strings.NewReader(""), Stdout: stdout, Stderr: &syncBuffer{}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Watch(ctx, Request{ScriptPath: testutil.FileURI(script)}, WatchOptions{
			Debounce: 50 * time.Millisecond,
			OnError:  func(err error) { t.Errorf("run failed: %v", err) },
		})
	}()

	waitFor(t, stdout, "state=first")
	// give the watcher time to register before touching the file
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(script, []byte("# @extern primitive state\nte2_set state second\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, stdout, "state=second")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func waitFor(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in:\n%s", want, out.String())
}
