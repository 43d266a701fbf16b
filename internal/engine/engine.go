// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/te2run/te2run/internal/functions"
	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/internal/pathres"
	"github.com/te2run/te2run/internal/provider"
	"github.com/te2run/te2run/pkg/extvar"
)

var (
	// ErrUndeclared is returned when binding or reading a name the unit did not declare.
	ErrUndeclared = errors.New("variable not declared")
	// ErrKindMismatch is returned when a binding does not match the declared kind.
	ErrKindMismatch = errors.New("variable kind mismatch")
	// ErrUnbound is returned when a script uses a stream variable that has no provider.
	ErrUnbound = errors.New("variable not bound")
	// ErrStreamUnavailable is returned when a provider yields no stream.
	ErrStreamUnavailable = errors.New("stream unavailable")
	// ErrCompile wraps fatal compilation failures.
	ErrCompile = errors.New("compilation failed")
)

type (
	// ExecutionUnit is a runnable instance of a compiled script. Binding
	// happens before Execute and harvesting after it; a unit is not safe for
	// concurrent use.
	ExecutionUnit interface {
		// VariableNames returns the declared external variable names in declaration order.
		VariableNames() []string
		// VariableKind returns the declared kind, or extvar.KindUnknown for an
		// undeclared name.
		VariableKind(name string) extvar.Kind
		// SetVariable binds the value of a primitive variable.
		SetVariable(name, value string) error
		// SetInput binds the provider of an input variable.
		SetInput(name string, src provider.Source) error
		// SetOutput binds the provider of an output variable.
		SetOutput(name string, sink provider.Sink) error
		// Variable returns the current value of a primitive variable.
		Variable(name string) (string, bool)
		// Issues returns the compile diagnostics carried by the unit.
		Issues() []Issue
		// SetLogger installs the logger used by the script and the engine.
		SetLogger(logger logging.Logger)
		// SetServiceProvider installs the services visible to built-in functions.
		SetServiceProvider(services functions.ServiceLocator)
		// Execute runs the script to completion.
		Execute(ctx context.Context) error
	}

	// CompiledUnit is the product of a successful compilation.
	CompiledUnit interface {
		// Path is the resolved path of the compiled script.
		Path() string
		// Dialect names the engine that compiled the unit.
		Dialect() string
		// Declarations returns the external variables in declaration order.
		Declarations() []extvar.Declaration
		// Issues returns non-fatal diagnostics found while compiling.
		Issues() []Issue
		// Sources returns the files the unit runs, includes and base unit
		// parts first.
		Sources() []string
		// CreateExecutable creates a fresh execution unit that can call the
		// functions in registry.
		CreateExecutable(registry *functions.Registry) ExecutionUnit
	}

	// Options are the compile inputs besides the script path.
	Options struct {
		// Base is an optional previously compiled unit whose declarations and
		// program run before the script.
		Base CompiledUnit
		// Resolver resolves the script path and @include directives.
		Resolver pathres.Resolver
		// Strict enables the dialect's strict mode (JavaScript "use strict").
		Strict bool
		// Trace enables command tracing where the dialect supports it (shell set -x).
		Trace bool
	}

	// StdioSetter is implemented by execution units whose scripts can use
	// standard streams. Units default to the process streams.
	StdioSetter interface {
		SetStdio(stdin io.Reader, stdout, stderr io.Writer)
	}

	// Compiler compiles a script file into a CompiledUnit.
	Compiler interface {
		Dialect() string
		Compile(path string, opts Options) (CompiledUnit, error)
	}

	// CompileError is returned for fatal compilation failures.
	CompileError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error { return e.Cause }

// Is reports ErrCompile so callers can use errors.Is(err, ErrCompile).
func (e *CompileError) Is(target error) bool { return target == ErrCompile }
