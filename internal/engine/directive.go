// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"strings"

	"github.com/te2run/te2run/pkg/extvar"
)

const (
	directiveExtern  = "@extern"
	directiveInclude = "@include"
)

type (
	// Comment is one comment of a script with its comment marker removed.
	Comment struct {
		Line int
		Text string
	}

	// Include is an @include directive found in a script.
	Include struct {
		Line int
		Path string
	}

	// Directives is what a single file declares through its comments.
	Directives struct {
		Declarations []extvar.Declaration
		Includes     []Include
		Issues       []Issue
	}
)

// ParseDirectives extracts @extern and @include directives from the comments
// of file. Malformed directives become issues; the remaining directives are
// still collected. A directive with an unknown kind is declared as
// extvar.KindUnknown so the binding pass can report it.
func ParseDirectives(file string, comments []Comment) Directives {
	var d Directives
	seen := make(map[string]extvar.Kind)

	issue := func(sev Severity, line int, format string, args ...any) {
		d.Issues = append(d.Issues, Issue{Severity: sev, File: file, Line: line, Message: fmt.Sprintf(format, args...)})
	}

	for _, c := range comments {
		fields := strings.Fields(c.Text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case directiveExtern:
			if len(fields) != 3 {
				issue(SeverityError, c.Line, "%s expects a kind and a name, got %q", directiveExtern, strings.Join(fields[1:], " "))
				continue
			}
			kind, err := extvar.ParseKind(fields[1])
			if err != nil {
				issue(SeverityError, c.Line, "%v", err)
			}
			decl := extvar.Declaration{Name: fields[2], Kind: kind}
			if err := extvar.ValidateName(decl.Name); err != nil {
				issue(SeverityError, c.Line, "%v", err)
				continue
			}
			if prev, dup := seen[decl.Name]; dup {
				if prev == kind {
					issue(SeverityWarning, c.Line, "variable %s declared twice", decl.Name)
				} else {
					issue(SeverityError, c.Line, "variable %s redeclared as %s (was %s)", decl.Name, kind, prev)
				}
				continue
			}
			seen[decl.Name] = kind
			d.Declarations = append(d.Declarations, decl)
		case directiveInclude:
			if len(fields) != 2 {
				issue(SeverityError, c.Line, "%s expects exactly one path", directiveInclude)
				continue
			}
			d.Includes = append(d.Includes, Include{Line: c.Line, Path: fields[1]})
		}
	}
	return d
}

// MergeDeclarations appends next to decls, skipping names already present.
// Conflicts are reported against file.
func MergeDeclarations(decls []extvar.Declaration, next []extvar.Declaration, file string) ([]extvar.Declaration, []Issue) {
	var issues []Issue
	for _, n := range next {
		conflict := false
		for _, d := range decls {
			if d.Name != n.Name {
				continue
			}
			conflict = true
			if d.Kind != n.Kind {
				issues = append(issues, Issue{
					Severity: SeverityError,
					File:     file,
					Message:  fmt.Sprintf("variable %s redeclared as %s (was %s)", n.Name, n.Kind, d.Kind),
				})
			}
			break
		}
		if !conflict {
			decls = append(decls, n)
		}
	}
	return decls, issues
}
