// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/te2run/te2run/internal/provider"
	"github.com/te2run/te2run/pkg/extvar"
)

// Table is the external variable table of one execution unit. Both engines
// embed it to implement the binding half of ExecutionUnit. Declarations are
// fixed at construction; bindings may be read and written concurrently, as
// shell pipeline stages do.
type Table struct {
	decls []extvar.Declaration
	index map[string]int

	mu      sync.RWMutex
	values  map[string]string
	sources map[string]provider.Source
	sinks   map[string]provider.Sink
}

// NewTable creates a table for decls. Duplicate names keep the first declaration.
func NewTable(decls []extvar.Declaration) *Table {
	t := &Table{
		index:   make(map[string]int, len(decls)),
		values:  make(map[string]string),
		sources: make(map[string]provider.Source),
		sinks:   make(map[string]provider.Sink),
	}
	for _, d := range decls {
		if _, dup := t.index[d.Name]; dup {
			continue
		}
		t.index[d.Name] = len(t.decls)
		t.decls = append(t.decls, d)
	}
	return t
}

// Declarations returns a copy of the declarations in order.
func (t *Table) Declarations() []extvar.Declaration {
	return slices.Clone(t.decls)
}

// VariableNames returns the declared names in declaration order.
func (t *Table) VariableNames() []string {
	names := make([]string, len(t.decls))
	for i, d := range t.decls {
		names[i] = d.Name
	}
	return names
}

// VariableKind returns the declared kind of name.
func (t *Table) VariableKind(name string) extvar.Kind {
	i, ok := t.index[name]
	if !ok {
		return extvar.KindUnknown
	}
	return t.decls[i].Kind
}

// SetVariable binds a primitive value.
func (t *Table) SetVariable(name, value string) error {
	if err := t.expect(name, extvar.KindPrimitive); err != nil {
		return err
	}
	t.mu.Lock()
	t.values[name] = value
	t.mu.Unlock()
	return nil
}

// SetInput binds an input provider.
func (t *Table) SetInput(name string, src provider.Source) error {
	if err := t.expect(name, extvar.KindInput); err != nil {
		return err
	}
	t.mu.Lock()
	t.sources[name] = src
	t.mu.Unlock()
	return nil
}

// SetOutput binds an output provider.
func (t *Table) SetOutput(name string, sink provider.Sink) error {
	if err := t.expect(name, extvar.KindOutput); err != nil {
		return err
	}
	t.mu.Lock()
	t.sinks[name] = sink
	t.mu.Unlock()
	return nil
}

// Variable returns the value of a primitive. An unbound primitive reads as
// the empty string; the boolean is false only for names that are not
// declared primitives.
func (t *Table) Variable(name string) (string, bool) {
	if t.VariableKind(name) != extvar.KindPrimitive {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[name], true
}

// Source returns the provider bound to an input variable.
func (t *Table) Source(name string) (provider.Source, error) {
	if err := t.expect(name, extvar.KindInput); err != nil {
		return nil, err
	}
	t.mu.RLock()
	src, ok := t.sources[name]
	t.mu.RUnlock()
	if !ok || src == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	return src, nil
}

// Sink returns the provider bound to an output variable.
func (t *Table) Sink(name string) (provider.Sink, error) {
	if err := t.expect(name, extvar.KindOutput); err != nil {
		return nil, err
	}
	t.mu.RLock()
	sink, ok := t.sinks[name]
	t.mu.RUnlock()
	if !ok || sink == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	return sink, nil
}

// Primitives returns name/value pairs of every primitive, bound or not, in
// declaration order.
func (t *Table) Primitives() [][2]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out [][2]string
	for _, d := range t.decls {
		if d.Kind == extvar.KindPrimitive {
			out = append(out, [2]string{d.Name, t.values[d.Name]})
		}
	}
	return out
}

func (t *Table) expect(name string, kind extvar.Kind) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUndeclared, name)
	}
	if got := t.decls[i].Kind; got != kind {
		return fmt.Errorf("%w: %s is declared %s, not %s", ErrKindMismatch, name, got, kind)
	}
	return nil
}
