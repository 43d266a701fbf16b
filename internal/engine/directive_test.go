// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/te2run/te2run/internal/pathres"
	"github.com/te2run/te2run/internal/testutil"
	"github.com/te2run/te2run/pkg/extvar"
)

func TestParseDirectives(t *testing.T) {
	comments := []Comment{
		{Line: 1, Text: " plain comment"},
		{Line: 2, Text: " @extern primitive count"},
		{Line: 3, Text: " @extern INPUT data"},
		{Line: 4, Text: " @extern outputArray parts"},
		{Line: 5, Text: " @extern bogus thing"},
		{Line: 6, Text: " @extern primitive 9lives"},
		{Line: 7, Text: " @extern primitive count"},
		{Line: 8, Text: " @extern output count"},
		{Line: 9, Text: " @include lib.te2"},
		{Line: 10, Text: " @include"},
		{Line: 11, Text: " @extern primitive"},
	}

	d := ParseDirectives("main.te2", comments)

	wantDecls := []extvar.Declaration{
		{Name: "count", Kind: extvar.KindPrimitive},
		{Name: "data", Kind: extvar.KindInput},
		{Name: "parts", Kind: extvar.KindOutputArray},
		{Name: "thing", Kind: extvar.KindUnknown},
	}
	if diff := cmp.Diff(wantDecls, d.Declarations); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Include{{Line: 9, Path: "lib.te2"}}, d.Includes); diff != "" {
		t.Errorf("includes mismatch (-want +got):\n%s", diff)
	}

	var lines []int
	var warnings int
	for _, is := range d.Issues {
		lines = append(lines, is.Line)
		if is.Severity == SeverityWarning {
			warnings++
		}
		if is.File != "main.te2" {
			t.Errorf("issue file = %q", is.File)
		}
	}
	if diff := cmp.Diff([]int{5, 6, 7, 8, 10, 11}, lines); diff != "" {
		t.Errorf("issue lines mismatch (-want +got):\n%s", diff)
	}
	if warnings != 1 {
		t.Errorf("expected the same-kind duplicate to be the only warning, got %d", warnings)
	}
}

func TestIssueString(t *testing.T) {
	is := Issue{Severity: SeverityWarning, File: "a.te2", Line: 3, Message: "oops"}
	if got := is.String(); got != "a.te2:3: warning: oops" {
		t.Errorf("String() = %q", got)
	}
	if got := (Issue{Message: "bare"}).String(); got != "error: bare" {
		t.Errorf("String() = %q", got)
	}
	if HasErrors([]Issue{is}) {
		t.Error("warnings alone must not count as errors")
	}
	if !HasErrors([]Issue{is, {Message: "x"}}) {
		t.Error("expected HasErrors")
	}
}

// lineParser treats every line starting with '#' as a comment and fails on a
// line reading "syntax error".
func lineParser(_ string, src []byte) (string, []Comment, error) {
	var comments []Comment
	for i, line := range strings.Split(string(src), "\n") {
		if line == "syntax error" {
			return "", nil, errors.New("unexpected token")
		}
		if text, ok := strings.CutPrefix(line, "#"); ok {
			comments = append(comments, Comment{Line: i + 1, Text: text})
		}
	}
	return string(src), comments, nil
}

func TestLoad_ExpandsIncludesDepthFirst(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "inner.te2", "# @extern primitive inner\n")
	testutil.WriteFile(t, dir, "lib.te2", "# @include inner.te2\n# @extern input data\n")
	main := testutil.WriteFile(t, dir, "main.te2", "# @include lib.te2\n# @include lib.te2\n# @include missing.te2\n# @extern primitive result\n")

	prog, err := Load(main, Options{}, lineParser)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var order []string
	for _, p := range prog.Parts {
		order = append(order, filepath.Base(p.Path))
	}
	if diff := cmp.Diff([]string{"inner.te2", "lib.te2", "main.te2"}, order); diff != "" {
		t.Errorf("part order mismatch (-want +got):\n%s", diff)
	}

	wantDecls := []extvar.Declaration{
		{Name: "inner", Kind: extvar.KindPrimitive},
		{Name: "data", Kind: extvar.KindInput},
		{Name: "result", Kind: extvar.KindPrimitive},
	}
	if diff := cmp.Diff(wantDecls, prog.Declarations); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}

	if len(prog.Issues) != 2 {
		t.Fatalf("expected duplicate include warning and missing include error, got %v", prog.Issues)
	}
	if prog.Issues[0].Severity != SeverityWarning || prog.Issues[1].Severity != SeverityError {
		t.Errorf("unexpected issue severities: %v", prog.Issues)
	}
}

func TestLoad_FatalErrors(t *testing.T) {
	dir := t.TempDir()
	bad := testutil.WriteFile(t, dir, "bad.te2", "syntax error")
	testutil.WriteFile(t, dir, "badlib.te2", "syntax error")
	withBadInclude := testutil.WriteFile(t, dir, "main.te2", "# @include badlib.te2\n")

	tests := []struct {
		name string
		path string
	}{
		{"missing script", filepath.Join(dir, "nope.te2")},
		{"syntax error", bad},
		{"syntax error in include", withBadInclude},
		{"remote script", "https://example.com/a.te2"},
		{"shared scheme", "shared:a.te2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, Options{Resolver: pathres.NewResolver("")}, lineParser)
			if !errors.Is(err, ErrCompile) {
				t.Fatalf("expected ErrCompile, got %v", err)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CompileError, got %T", err)
			}
		})
	}
}

func TestLoad_RemoteIncludeIsIssue(t *testing.T) {
	dir := t.TempDir()
	main := testutil.WriteFile(t, dir, "main.te2", "# @include http://example.com/lib.te2\n")

	prog, err := Load(main, Options{}, lineParser)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !HasErrors(prog.Issues) {
		t.Errorf("expected an error issue for remote include, got %v", prog.Issues)
	}
}
