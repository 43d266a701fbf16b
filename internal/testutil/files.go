// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to dir/name, creating missing parent directories,
// and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// WriteScript writes a script into a fresh temporary directory and returns
// its path.
func WriteScript(t testing.TB, name, content string) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), name, content)
}

// FileURI returns path as a file: URI. Root-relative paths are resolved
// against the working directory, so tests hand absolute temporary paths to
// the resolver in this form.
func FileURI(path string) string {
	return "file://" + filepath.ToSlash(path)
}
