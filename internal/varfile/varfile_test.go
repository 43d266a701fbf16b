// SPDX-License-Identifier: MPL-2.0

package varfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_AllFormats(t *testing.T) {
	t.Parallel()

	want := map[string]string{"name": "demo", "count": "3", "ratio": "1.5", "enabled": "true"}

	tests := []struct {
		format  Format
		content string
	}{
		{FormatEnv, "name=demo\ncount=3\nratio=1.5\nenabled=true\n"},
		{FormatYAML, "name: demo\ncount: 3\nratio: 1.5\nenabled: true\n"},
		{FormatTOML, "name = \"demo\"\ncount = 3\nratio = 1.5\nenabled = true\n"},
		{FormatHCL, "name = \"demo\"\ncount = 3\nratio = 1.5\nenabled = true\n"},
		{FormatCUE, "name: \"demo\"\ncount: 3\nratio: 1.5\nenabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.format, []byte(tt.content), "vars."+string(tt.format))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_RejectsNestedValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  Format
		content string
	}{
		{FormatYAML, "files:\n  - a\n  - b\n"},
		{FormatTOML, "[section]\nkey = 1\n"},
		{FormatHCL, "files = [\"a\", \"b\"]\n"},
		{FormatCUE, "nested: {a: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			if _, err := Parse(tt.format, []byte(tt.content), "nested"); !errors.Is(err, ErrNotScalar) {
				t.Errorf("expected ErrNotScalar, got %v", err)
			}
		})
	}
}

func TestParseEnv_Quoting(t *testing.T) {
	t.Parallel()

	content := `# comment
export GREETING="hello\tworld\n"
LITERAL='no\nescape'
INLINE=value # trailing comment
EMPTY=
URL=https://example.com?a=b
UNKNOWN="keep\q"
`
	got, err := parseEnv([]byte(content), "test.env")
	if err != nil {
		t.Fatalf("parseEnv failed: %v", err)
	}
	want := map[string]string{
		"GREETING": "hello\tworld\n",
		"LITERAL":  `no\nescape`,
		"INLINE":   "value",
		"EMPTY":    "",
		"URL":      "https://example.com?a=b",
		"UNKNOWN":  `keep\q`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEnv_Errors(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"NOEQUALS", "=value", `A="open`, `B='open`} {
		if _, err := parseEnv([]byte(content), "bad.env"); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"vars.env":  FormatEnv,
		"dir/.env":  FormatEnv,
		"vars.yml":  FormatYAML,
		"VARS.YAML": FormatYAML,
		"vars.toml": FormatTOML,
		"vars.hcl":  FormatHCL,
		"vars.cue":  FormatCUE,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %q, %v, want %q", path, got, err, want)
		}
	}
	if _, err := FormatOf("vars.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_OverridesAndOptional(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "a.env")
	second := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(first, []byte("x=1\ny=2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("y: override\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(map[string]string)
	for _, p := range []string{first, second, filepath.Join(dir, "missing.toml") + "?"} {
		if err := Load(got, p); err != nil {
			t.Fatalf("Load(%s) failed: %v", p, err)
		}
	}
	if diff := cmp.Diff(map[string]string{"x": "1", "y": "override"}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if err := Load(got, filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected a required missing file to fail")
	}
}
