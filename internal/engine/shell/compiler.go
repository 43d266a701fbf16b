// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"errors"
	"fmt"

	"mvdan.cc/sh/v3/syntax"

	"github.com/te2run/te2run/internal/engine"
	"github.com/te2run/te2run/internal/functions"
	"github.com/te2run/te2run/pkg/extvar"
)

// Dialect is the name of the shell dialect.
const Dialect = "shell"

// ErrBaseDialect is returned when a base unit was compiled by another engine.
var ErrBaseDialect = errors.New("base unit has a different dialect")

type (
	// Compiler compiles shell dialect scripts with the mvdan/sh parser.
	Compiler struct{}

	// Unit is a compiled shell dialect script.
	Unit struct {
		path   string
		parts  []engine.Part[*syntax.File]
		decls  []extvar.Declaration
		issues []engine.Issue
		trace  bool
	}
)

var (
	_ engine.Compiler     = (*Compiler)(nil)
	_ engine.CompiledUnit = (*Unit)(nil)
)

// NewCompiler creates a shell dialect compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Dialect returns "shell".
func (c *Compiler) Dialect() string { return Dialect }

// Compile parses the script at path and its includes. opts.Strict has no
// effect for this dialect; opts.Trace enables set -x.
func (c *Compiler) Compile(path string, opts engine.Options) (engine.CompiledUnit, error) {
	var baseParts []engine.Part[*syntax.File]
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

	prog, err := engine.Load(path, opts, parse)
	if err != nil {
		return nil, err
	}

	parts := make([]engine.Part[*syntax.File], 0, len(baseParts)+len(prog.Parts))
	parts = append(parts, baseParts...)
	parts = append(parts, prog.Parts...)

	return &Unit{
		path:   prog.Path,
		parts:  parts,
		decls:  prog.Declarations,
		issues: prog.Issues,
		trace:  opts.Trace,
	}, nil
}

// parse parses one file keeping comments, so directives can be read from them.
func parse(name string, src []byte) (*syntax.File, []engine.Comment, error) {
	parser := syntax.NewParser(syntax.KeepComments(true))
	file, err := parser.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, nil, fmt.Errorf("script syntax error: %w", err)
	}

	var comments []engine.Comment
	syntax.Walk(file, func(node syntax.Node) bool {
		if c, ok := node.(*syntax.Comment); ok {
			comments = append(comments, engine.Comment{Line: int(c.Pos().Line()), Text: c.Text})
		}
		return true
	})
	return file, comments, nil
}

// Path returns the resolved script path.
func (u *Unit) Path() string { return u.path }

// Dialect returns "shell".
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

// CreateExecutable creates a fresh execution unit bound to registry.
func (u *Unit) CreateExecutable(registry *functions.Registry) engine.ExecutionUnit {
	return &execUnit{
		UnitBase: engine.NewUnitBase(u.decls, u.issues, registry),
		unit:     u,
	}
}
