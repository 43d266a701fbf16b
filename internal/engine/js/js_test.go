// SPDX-License-Identifier: MPL-2.0

package js

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/te2run/te2run/internal/counter"
	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/engine/shell"
	"github.com/te2run/te2run/internal/functions"
	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/internal/provider"
	"github.com/te2run/te2run/internal/services"
	"github.com/te2run/te2run/internal/testutil"
	"github.com/te2run/te2run/pkg/extvar"
)

func newRegistry(t *testing.T) *functions.Registry {
	t.Helper()
	r := functions.NewRegistry()
	if err := counter.Install(r); err != nil {
		t.Fatalf("failed to install counter functions: %v", err)
	}
	return r
}

func compile(t *testing.T, path string, opts engine.Options) engine.CompiledUnit {
	t.Helper()
	unit, err := NewCompiler().Compile(path, opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return unit
}

const fullScript = `// @extern primitive greeting
// @extern primitive result
// @extern primitive untouched
// @extern input data
// @extern output report
// @extern outputArray parts
createCounterWithParams("hits", "10", "5");
incrementCounter("hits");
result = greeting + " " + getCounter("hits");
writeOutput("report", readInput("data").toUpperCase());
writeOutput("report", "done\n");
log("info", "finished");
print("printed", 1);
`

func TestExecute_FullScript(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteFile(t, dir, "full.js", fullScript)
	dataPath := testutil.WriteFile(t, dir, "data.txt", "abc\n")
	reportPath := filepath.Join(dir, "report.txt")

	unit := compile(t, script, engine.Options{Strict: true})
	if unit.Dialect() != Dialect {
		t.Errorf("Dialect() = %q", unit.Dialect())
	}
	wantDecls := []extvar.Declaration{
		{Name: "greeting", Kind: extvar.KindPrimitive},
		{Name: "result", Kind: extvar.KindPrimitive},
		{Name: "untouched", Kind: extvar.KindPrimitive},
		{Name: "data", Kind: extvar.KindInput},
		{Name: "report", Kind: extvar.KindOutput},
		{Name: "parts", Kind: extvar.KindOutputArray},
	}
	if diff := cmp.Diff(wantDecls, unit.Declarations()); diff != "" {
		t.Fatalf("declarations mismatch (-want +got):\n%s", diff)
	}

	svc, err := services.NewProvider(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = svc.Close() }()

	var logOut, stdout bytes.Buffer
	exec := unit.CreateExecutable(newRegistry(t))
	exec.SetLogger(logging.NewWithWriters(logging.LevelInfo, &logOut, &logOut))
	exec.SetServiceProvider(svc)
	exec.(engine.StdioSetter).SetStdio(nil, &stdout, nil)

	if err := exec.SetVariable("greeting", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := exec.SetInput("data", provider.NewFileInput(dataPath, nil)); err != nil {
		t.Fatal(err)
	}
	if err := exec.SetOutput("report", provider.NewFileOutput(reportPath, nil)); err != nil {
		t.Fatal(err)
	}

	if err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got, _ := exec.Variable("result"); got != "hello 15" {
		t.Errorf("result = %q, want %q", got, "hello 15")
	}
	if got, ok := exec.Variable("untouched"); !ok || got != "" {
		t.Errorf("untouched = %q, %v", got, ok)
	}
	report, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if string(report) != "ABC\ndone\n" {
		t.Errorf("report = %q", report)
	}
	if !strings.Contains(logOut.String(), "finished") {
		t.Errorf("expected script log message, got %q", logOut.String())
	}
	if stdout.String() != "printed 1\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestExecute_ThrowsOnUnboundInput(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "unbound.js", `// @extern input data
// @extern primitive caught
try { readInput("data"); } catch (e) { caught = "yes"; }
readInput("data");
`)
	exec := compile(t, path, engine.Options{}).CreateExecutable(newRegistry(t))
	err := exec.Execute(context.Background())
	if !errors.Is(err, ErrScriptFailed) {
		t.Fatalf("expected ErrScriptFailed, got %v", err)
	}
	if got, _ := exec.Variable("caught"); got != "yes" {
		t.Errorf("primitives must be synced even after a failure, caught = %q", got)
	}
}

func TestExecute_InterruptedByContext(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "loop.js", "for (;;) {}\n")
	exec := compile(t, path, engine.Options{}).CreateExecutable(newRegistry(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := exec.Execute(ctx); !errors.Is(err, ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", err)
	}
}

func TestExecute_BaseAndInclude(t *testing.T) {
	dir := t.TempDir()
	basePath := testutil.WriteFile(t, dir, "base.js", "// @extern primitive result\nfunction tag(s) { return \"[\" + s + \"]\"; }\n")
	testutil.WriteFile(t, dir, "lib.js", "var suffix = \"lib\";\n")
	mainPath := testutil.WriteFile(t, dir, "main.js", "// @include lib.js\nresult = tag(suffix);\n")

	base := compile(t, basePath, engine.Options{})
	exec := compile(t, mainPath, engine.Options{Base: base}).CreateExecutable(newRegistry(t))
	if err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got, _ := exec.Variable("result"); got != "[lib]" {
		t.Errorf("result = %q, want [lib]", got)
	}
}

func TestPrimitivesShadowingFunctions(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "shadow.js", `// @extern primitive print
// @extern primitive getCounter
// @extern primitive result
result = typeof print + ":" + print + ":" + getCounter;
`)
	unit := compile(t, path, engine.Options{})

	var compileMsgs []string
	for _, is := range unit.Issues() {
		if is.Severity != engine.SeverityError {
			t.Errorf("issue %q: severity = %s, want error", is.Message, is.Severity)
		}
		compileMsgs = append(compileMsgs, is.Message)
	}
	want := []string{"primitive print shadows the function print, which will not be defined"}
	if diff := cmp.Diff(want, compileMsgs); diff != "" {
		t.Errorf("compile issues mismatch (-want +got):\n%s", diff)
	}

	exec := unit.CreateExecutable(newRegistry(t))
	var execMsgs []string
	for _, is := range exec.Issues() {
		execMsgs = append(execMsgs, is.Message)
	}
	want = append(want, "primitive getCounter shadows the function getCounter, which will not be defined")
	if diff := cmp.Diff(want, execMsgs); diff != "" {
		t.Errorf("execution issues mismatch (-want +got):\n%s", diff)
	}

	if err := exec.SetVariable("print", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := exec.SetVariable("getCounter", "7"); err != nil {
		t.Fatal(err)
	}
	if err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got, _ := exec.Variable("result"); got != "string:hello:7" {
		t.Errorf("result = %q, want %q", got, "string:hello:7")
	}
	if got, _ := exec.Variable("print"); got != "hello" {
		t.Errorf("print = %q, want hello", got)
	}

	// a shadowing primitive inherited from a base unit is reported once
	main := testutil.WriteFile(t, dir, "main.js", "result = print;\n")
	derived := compile(t, main, engine.Options{Base: unit})
	if n := len(derived.Issues()); n != 1 {
		t.Errorf("derived unit has %d issues, want 1: %v", n, derived.Issues())
	}
}

func TestCompile_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := testutil.WriteFile(t, dir, "bad.js", "function (\n")
	if _, err := NewCompiler().Compile(bad, engine.Options{}); !errors.Is(err, engine.ErrCompile) {
		t.Errorf("expected ErrCompile for syntax error, got %v", err)
	}

	strictOnly := testutil.WriteFile(t, dir, "strict.js", "var o = {};\nwith (o) {}\n")
	if _, err := NewCompiler().Compile(strictOnly, engine.Options{}); err != nil {
		t.Errorf("with statement must compile in sloppy mode: %v", err)
	}
	if _, err := NewCompiler().Compile(strictOnly, engine.Options{Strict: true}); !errors.Is(err, engine.ErrCompile) {
		t.Errorf("expected strict mode to reject a with statement, got %v", err)
	}

	shellBase := testutil.WriteFile(t, dir, "base.te2", "# @extern primitive x\n")
	base, err := shell.NewCompiler().Compile(shellBase, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	main := testutil.WriteFile(t, dir, "main.js", "x = 1;\n")
	if _, err := NewCompiler().Compile(main, engine.Options{Base: base}); !errors.Is(err, ErrBaseDialect) {
		t.Errorf("expected ErrBaseDialect, got %v", err)
	}
}

func TestLineComments(t *testing.T) {
	src := []byte("var a = 1; // trailing\n  // @extern primitive a\n/* block */\n")
	got := lineComments(src)
	want := []engine.Comment{{Line: 2, Text: " @extern primitive a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lineComments mismatch (-want +got):\n%s", diff)
	}
}
