// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/te2run/te2run/internal/config"
	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/engine/js"
	"github.com/te2run/te2run/internal/engine/shell"
	"github.com/te2run/te2run/internal/issue"
	"github.com/te2run/te2run/internal/pathres"
)

// ErrUnknownDialect is returned when no engine handles the script extension.
var ErrUnknownDialect = errors.New("cannot determine script dialect")

// CompileOptions configures Compile.
type CompileOptions struct {
	// Engine forces a dialect; EngineAuto (or "") selects it by extension.
	Engine config.EngineMode
	// WorkingDir prefixes root-relative script and include paths. Empty
	// means the process working directory.
	WorkingDir string
	Strict     bool
	Trace      bool
}

// CompilerFor returns the compiler for path. Shell dialect scripts end in
// .te2 or .sh, JavaScript dialect scripts in .js.
func CompilerFor(path string, mode config.EngineMode) (engine.Compiler, error) {
	switch mode {
	case config.EngineShell:
		return shell.NewCompiler(), nil
	case config.EngineJS:
		return js.NewCompiler(), nil
	case config.EngineAuto, "":
	default:
		return nil, &config.InvalidEngineModeError{Value: mode}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".te2", ".sh":
		return shell.NewCompiler(), nil
	case ".js":
		return js.NewCompiler(), nil
	default:
		return nil, fmt.Errorf("%w: %s (use .te2, .sh or .js, or set engine)", ErrUnknownDialect, path)
	}
}

// Compile compiles the script at path with the engine chosen by opts.
// Failures are returned as *issue.ActionableError.
func Compile(path string, opts CompileOptions) (engine.CompiledUnit, error) {
	compiler, err := CompilerFor(path, opts.Engine)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("select engine").
			WithResource(path).
			WithSuggestion("Name the script *.te2, *.sh or *.js").
			WithSuggestion("Or force one with --engine shell|js").
			Wrap(err).
			BuildError()
	}

	resolver, err := pathres.ForWorkingDir(opts.WorkingDir)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve working directory").
			Wrap(err).
			BuildError()
	}

	unit, err := compiler.Compile(path, engine.Options{
		Resolver: resolver,
		Strict:   opts.Strict,
		Trace:    opts.Trace,
	})
	if err == nil {
		return unit, nil
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, engine.ErrRemoteScript) {
		return nil, issue.NewErrorContext().
			WithOperation("read script").
			WithResource(path).
			WithIssue(issue.ScriptNotFoundId).
			WithSuggestion("Check the script path").
			Wrap(err).
			BuildError()
	}
	return nil, issue.NewErrorContext().
		WithOperation("compile script").
		WithResource(path).
		WithIssue(issue.CompileFailedId).
		WithSuggestion(fmt.Sprintf("Check the %s dialect syntax", compiler.Dialect())).
		Wrap(err).
		BuildError()
}
