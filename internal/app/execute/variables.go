// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/te2run/te2run/internal/issue"
	"github.com/te2run/te2run/internal/varfile"
)

// ErrInvalidAssignment is returned for a --var value without "=".
var ErrInvalidAssignment = errors.New("invalid variable assignment")

// VariableSources lists where external variable values come from. Later
// sources override earlier ones.
type VariableSources struct {
	// Config holds the values of the configuration file.
	Config map[string]string
	// Files are variable files; a "?" suffix makes one optional.
	Files []string
	// Assignments are NAME=VALUE pairs from the command line.
	Assignments []string
}

// MergeVariables layers the sources into one name to value mapping.
func MergeVariables(src VariableSources) (map[string]string, error) {
	values := make(map[string]string, len(src.Config))
	maps.Copy(values, src.Config)

	for _, f := range src.Files {
		if err := varfile.Load(values, f); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load variable file").
				WithResource(strings.TrimSuffix(f, "?")).
				WithIssue(issue.VarFileInvalidId).
				Wrap(err).
				BuildError()
		}
	}

	for _, a := range src.Assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q (expected NAME=VALUE)", ErrInvalidAssignment, a)
		}
		values[name] = value
	}
	return values, nil
}
