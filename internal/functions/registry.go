// SPDX-License-Identifier: MPL-2.0

package functions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/te2run/te2run/internal/logging"
)

var (
	// ErrDuplicateFunction is returned when a name is registered twice.
	ErrDuplicateFunction = errors.New("function already registered")
	// ErrUnknownFunction is returned when calling a name that is not registered.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrArity is wrapped by argument count mismatches.
	ErrArity = errors.New("wrong number of arguments")
	// ErrServiceUnavailable is returned when a function needs a service the
	// execution unit was not given.
	ErrServiceUnavailable = errors.New("service unavailable")
)

type (
	// ServiceLocator resolves named services (counters, database) for built-in functions.
	ServiceLocator interface {
		Lookup(name string) (any, bool)
	}

	// Call carries the arguments and run-scoped collaborators of one invocation.
	Call struct {
		Name     string
		Args     []string
		Services ServiceLocator
		Logger   logging.Logger
	}

	// Function is a built-in callable from scripts. Results are strings in
	// both dialects.
	Function interface {
		Name() string
		Call(ctx context.Context, call Call) (string, error)
	}

	// Registry holds the built-ins installed for one run. It is created per
	// run and handed to the compiled unit, never shared process-wide.
	Registry struct {
		funcs map[string]Function
	}
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

// AddBuiltIn registers fn under its name.
func (r *Registry) AddBuiltIn(fn Function) error {
	name := fn.Name()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls the function registered under call.Name.
func (r *Registry) Invoke(ctx context.Context, call Call) (string, error) {
	fn, ok := r.Lookup(call.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFunction, call.Name)
	}
	if call.Logger == nil {
		call.Logger = logging.Discard()
	}
	logging.Logf(call.Logger, logging.LevelTrace, "call %s%q", call.Name, call.Args)
	return fn.Call(ctx, call)
}

// ExpectArgs returns an ErrArity error unless call has exactly n arguments.
func ExpectArgs(call Call, n int) error {
	if len(call.Args) != n {
		return fmt.Errorf("%s: %w: expected %d, got %d", call.Name, ErrArity, n, len(call.Args))
	}
	return nil
}
