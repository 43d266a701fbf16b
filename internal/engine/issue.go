// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"strings"
)

// Severity values for compile issues.
const (
	SeverityError Severity = iota
	SeverityWarning
)

type (
	// Severity classifies an Issue.
	Severity int

	// Issue is a non-fatal compile diagnostic.
	Issue struct {
		Severity Severity
		File     string
		Line     int
		Message  string
	}
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// String renders the issue as file:line: severity: message.
func (i Issue) String() string {
	var sb strings.Builder
	if i.File != "" {
		sb.WriteString(i.File)
		if i.Line > 0 {
			fmt.Fprintf(&sb, ":%d", i.Line)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(i.Message)
	return sb.String()
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}
