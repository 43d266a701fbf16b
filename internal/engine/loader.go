// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/te2run/te2run/internal/pathres"
	"github.com/te2run/te2run/pkg/extvar"
)

// ErrRemoteScript is the cause of a CompileError for http(s) script paths.
var ErrRemoteScript = errors.New("remote scripts are not supported")

type (
	// ParseFunc parses one source file of a dialect into its program
	// representation and its comments. A returned error is a syntax error.
	ParseFunc[T any] func(name string, src []byte) (T, []Comment, error)

	// Part is one parsed file of a program. Parts run in order.
	Part[T any] struct {
		Path    string
		Program T
	}

	// Program is a script with its includes expanded, ready to be wrapped by
	// a dialect's CompiledUnit.
	Program[T any] struct {
		Path         string
		Parts        []Part[T]
		Declarations []extvar.Declaration
		Issues       []Issue
	}

	loader[T any] struct {
		resolver pathres.Resolver
		parse    ParseFunc[T]
		visited  map[string]bool
		prog     *Program[T]
	}
)

// Load resolves and parses the script at path together with its @include
// files. Included files are placed before the including file, depth first.
// Declarations of opts.Base come first, followed by those of every part in
// run order. Only a missing or unparsable script (or include) is fatal;
// every other problem becomes an issue.
func Load[T any](path string, opts Options, parse ParseFunc[T]) (*Program[T], error) {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = pathres.NewResolver("")
	}

	resolved, err := resolver.GetPath(path)
	if err != nil {
		return nil, &CompileError{Path: path, Cause: err}
	}
	if pathres.IsRemote(resolved) {
		return nil, &CompileError{Path: resolved, Cause: ErrRemoteScript}
	}
	src, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &CompileError{Path: resolved, Cause: err}
	}

	l := &loader[T]{
		resolver: resolver,
		parse:    parse,
		visited:  map[string]bool{filepath.Clean(resolved): true},
		prog:     &Program[T]{Path: resolved},
	}
	if opts.Base != nil {
		l.prog.Declarations = opts.Base.Declarations()
		l.prog.Issues = opts.Base.Issues()
	}
	if err := l.load(resolved, src); err != nil {
		return nil, err
	}
	return l.prog, nil
}

func (l *loader[T]) load(file string, src []byte) error {
	program, comments, err := l.parse(file, src)
	if err != nil {
		return &CompileError{Path: file, Cause: err}
	}

	d := ParseDirectives(file, comments)
	l.prog.Issues = append(l.prog.Issues, d.Issues...)

	for _, inc := range d.Includes {
		target, ok := l.resolveInclude(file, inc)
		if !ok {
			continue
		}
		incSrc, err := os.ReadFile(target)
		if err != nil {
			l.issue(file, inc.Line, "cannot read include %s: %v", inc.Path, err)
			continue
		}
		if err := l.load(target, incSrc); err != nil {
			return err
		}
	}

	var conflicts []Issue
	l.prog.Declarations, conflicts = MergeDeclarations(l.prog.Declarations, d.Declarations, file)
	l.prog.Issues = append(l.prog.Issues, conflicts...)
	l.prog.Parts = append(l.prog.Parts, Part[T]{Path: file, Program: program})
	return nil
}

func (l *loader[T]) resolveInclude(file string, inc Include) (string, bool) {
	target, err := l.resolver.Resolve(inc.Path, filepath.Dir(file)+"/")
	if err != nil {
		l.issue(file, inc.Line, "cannot resolve include %s: %v", inc.Path, err)
		return "", false
	}
	if pathres.IsRemote(target) {
		l.issue(file, inc.Line, "remote include %s is not supported", inc.Path)
		return "", false
	}
	key := filepath.Clean(target)
	if l.visited[key] {
		l.prog.Issues = append(l.prog.Issues, Issue{
			Severity: SeverityWarning,
			File:     file,
			Line:     inc.Line,
			Message:  fmt.Sprintf("%s already included", inc.Path),
		})
		return "", false
	}
	l.visited[key] = true
	return target, true
}

func (l *loader[T]) issue(file string, line int, format string, args ...any) {
	l.prog.Issues = append(l.prog.Issues, Issue{
		Severity: SeverityError,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// PartPaths returns the paths of parts, in order.
func PartPaths[T any](parts []Part[T]) []string {
	paths := make([]string, len(parts))
	for i, p := range parts {
		paths[i] = p.Path
	}
	return paths
}
