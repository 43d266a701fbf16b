// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"strings"

	"github.com/te2run/te2run/pkg/extvar"
)

// ReportHeader precedes the output variable lines of a non-empty report.
const ReportHeader = "Output variables:"

type (
	// Source is the part of an execution unit the harvester reads from.
	Source interface {
		VariableNames() []string
		VariableKind(name string) extvar.Kind
		Variable(name string) (string, bool)
	}

	// Row is one harvested primitive.
	Row struct {
		Name  string
		Value string
	}

	// Report holds the primitives of a unit after execution, in declaration order.
	Report struct {
		Rows []Row
	}
)

// Harvest reads every primitive variable of src. It does not modify src.
func Harvest(src Source) Report {
	var r Report
	for _, name := range src.VariableNames() {
		if src.VariableKind(name) != extvar.KindPrimitive {
			continue
		}
		value, _ := src.Variable(name)
		r.Rows = append(r.Rows, Row{Name: name, Value: value})
	}
	return r
}

// Empty reports whether the report has no rows.
func (r Report) Empty() bool { return len(r.Rows) == 0 }

// Lines returns the rows as name=value strings.
func (r Report) Lines() []string {
	lines := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		lines[i] = row.Name + "=" + row.Value
	}
	return lines
}

// String renders a blank line, the header and one name=value line per row.
// An empty report renders as the empty string.
func (r Report) String() string {
	if r.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n" + ReportHeader + "\n")
	for _, line := range r.Lines() {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
