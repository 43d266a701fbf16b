// SPDX-License-Identifier: MPL-2.0

package js

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dop251/goja"

	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/functions"
	"github.com/te2run/te2run/pkg/extvar"
)

// Dialect is the name of the JavaScript dialect.
const Dialect = "js"

// ErrBaseDialect is returned when a base unit was compiled by another engine.
var ErrBaseDialect = errors.New("base unit has a different dialect")

type (
	// Compiler compiles JavaScript dialect scripts with goja.
	Compiler struct{}

	// Unit is a compiled JavaScript dialect script.
	Unit struct {
		path   string
		parts  []engine.Part[*goja.Program]
		decls  []extvar.Declaration
		issues []engine.Issue
	}
)

var (
	_ engine.Compiler     = (*Compiler)(nil)
	_ engine.CompiledUnit = (*Unit)(nil)
)

// NewCompiler creates a JavaScript dialect compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Dialect returns "js".
func (c *Compiler) Dialect() string { return Dialect }

// Compile compiles the script at path and its includes. opts.Strict compiles
// every part in strict mode; opts.Trace has no effect for this dialect.
func (c *Compiler) Compile(path string, opts engine.Options) (engine.CompiledUnit, error) {
	var baseParts []engine.Part[*goja.Program]
	if opts.Base != nil {
		base, ok := opts.Base.(*Unit)
		if !ok {
			return nil, &engine.CompileError{
				Path:  path,
				Cause: fmt.Errorf("%w: %s", ErrBaseDialect, opts.Base.Dialect()),
			}
		}
		baseParts = base.parts
	}

	prog, err := engine.Load(path, opts, parser(opts.Strict))
	if err != nil {
		return nil, err
	}

	parts := make([]engine.Part[*goja.Program], 0, len(baseParts)+len(prog.Parts))
	parts = append(parts, baseParts...)
	parts = append(parts, prog.Parts...)

	return &Unit{
		path:   prog.Path,
		parts:  parts,
		decls:  prog.Declarations,
		issues: shadowIssues(prog.Path, prog.Declarations, hostFuncs, prog.Issues),
	}, nil
}

// shadowIssues appends an error for every primitive named like one of funcs.
// The primitive global wins and the function is not defined. Issues already
// present, such as those inherited from a base unit, are not repeated.
func shadowIssues(path string, decls []extvar.Declaration, funcs []string, issues []engine.Issue) []engine.Issue {
	out := slices.Clone(issues)
	for _, d := range decls {
		if d.Kind != extvar.KindPrimitive || !slices.Contains(funcs, d.Name) {
			continue
		}
		is := engine.Issue{
			Severity: engine.SeverityError,
			File:     path,
			Message:  fmt.Sprintf("primitive %s shadows the function %s, which will not be defined", d.Name, d.Name),
		}
		if !slices.ContainsFunc(out, func(o engine.Issue) bool { return o.Message == is.Message }) {
			out = append(out, is)
		}
	}
	return out
}

func parser(strict bool) engine.ParseFunc[*goja.Program] {
	return func(name string, src []byte) (*goja.Program, []engine.Comment, error) {
		program, err := goja.Compile(name, string(src), strict)
		if err != nil {
			return nil, nil, fmt.Errorf("script syntax error: %w", err)
		}
		return program, lineComments(src), nil
	}
}

// lineComments returns the "//" comments that occupy a whole line. Directives
// are only recognized there.
func lineComments(src []byte) []engine.Comment {
	var comments []engine.Comment
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "//")
		if ok {
			comments = append(comments, engine.Comment{Line: line, Text: text})
		}
	}
	return comments
}

// Path returns the resolved script path.
func (u *Unit) Path() string { return u.path }

// Dialect returns "js".
func (u *Unit) Dialect() string { return Dialect }

// Declarations returns the external variables in declaration order.
func (u *Unit) Declarations() []extvar.Declaration {
	out := make([]extvar.Declaration, len(u.decls))
	copy(out, u.decls)
	return out
}

// Issues returns the compile diagnostics.
func (u *Unit) Issues() []engine.Issue {
	out := make([]engine.Issue, len(u.issues))
	copy(out, u.issues)
	return out
}

// Sources returns the path of every part in run order.
func (u *Unit) Sources() []string {
	return engine.PartPaths(u.parts)
}

// CreateExecutable creates a fresh execution unit bound to registry. Primitives
// named like a registered function add an issue to the execution unit.
func (u *Unit) CreateExecutable(registry *functions.Registry) engine.ExecutionUnit {
	issues := shadowIssues(u.path, u.decls, registry.Names(), u.issues)
	return &execUnit{
		UnitBase: engine.NewUnitBase(u.decls, issues, registry),
		unit:     u,
	}
}
