// SPDX-License-Identifier: MPL-2.0

package pathres

import (
	"errors"
	"os"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewResolver("/work")

	tests := []struct {
		name       string
		path       string
		currentDir string
		want       string
	}{
		{"relative with current dir", "foo.te2", "/base/", "/base/foo.te2"},
		{"no separator inserted", "foo.te2", "/base", "/basefoo.te2"},
		{"root-relative ignores current dir", "/abs/path", "/base/", "/work/abs/path"},
		{"http unchanged", "http://x/y", "", "http://x/y"},
		{"https unchanged with current dir", "https://x/y", "/base/", "https://x/y"},
		{"file uri path", "file:///tmp/a", "", "/tmp/a"},
		{"file uri with current dir", "file:///tmp/a", "/base/", "/tmp/a"},
		{"root-relative uses working dir", "/abs/path", "", "/work/abs/path"},
		{"plain relative unchanged", "rel/path", "", "rel/path"},
		{"shared concatenated when current dir given", "shared:x", "/base/", "/base/shared:x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.path, tt.currentDir)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) returned error: %v", tt.path, tt.currentDir, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.path, tt.currentDir, got, tt.want)
			}
		})
	}
}

func TestResolve_SharedFails(t *testing.T) {
	r := NewResolver("/work")

	_, err := r.GetPath("shared:x")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestResolve_MalformedFileURI(t *testing.T) {
	r := NewResolver("/work")

	for _, p := range []string{"file:%zz", "file:relative"} {
		if _, err := r.GetPath(p); !errors.Is(err, ErrInvalidURI) {
			t.Errorf("GetPath(%q): expected ErrInvalidURI, got %v", p, err)
		}
	}
}

func TestIsRemote(t *testing.T) {
	if !IsRemote("https://example.com/a.te2") {
		t.Error("expected https path to be remote")
	}
	if IsRemote("/tmp/a.te2") {
		t.Error("expected local path not to be remote")
	}
}

func TestForWorkingDir(t *testing.T) {
	t.Parallel()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	r, err := ForWorkingDir("")
	if err != nil {
		t.Fatalf("ForWorkingDir returned error: %v", err)
	}
	if got, _ := r.GetPath("/abs/path"); got != wd+"/abs/path" {
		t.Errorf("GetPath(/abs/path) = %q, want %q", got, wd+"/abs/path")
	}

	r, err = ForWorkingDir("/work")
	if err != nil {
		t.Fatalf("ForWorkingDir returned error: %v", err)
	}
	if got, _ := r.GetPath("/abs/path"); got != "/work/abs/path" {
		t.Errorf("GetPath(/abs/path) = %q, want /work/abs/path", got)
	}
}
