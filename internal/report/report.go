// SPDX-License-Identifier: MPL-2.0

package report

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/te2run/te2run/internal/engine"
)

// IssuesHeader precedes the list of compile issues that stopped a run.
const IssuesHeader = "Errors:"

var printer = message.NewPrinter(language.English)

// FormatSeconds renders d in seconds with millisecond precision and a space
// between digit groups, e.g. "1 234.567". Sub-millisecond parts are truncated.
func FormatSeconds(d time.Duration) string {
	ms := d.Milliseconds()
	s := printer.Sprintf("%.3f", float64(ms)/1000)
	return strings.ReplaceAll(s, ",", " ")
}

// Completed returns the message printed after a successful run.
func Completed(d time.Duration) string {
	return "Completed successfully in " + FormatSeconds(d) + " seconds."
}

// Issues renders compile issues one per line under IssuesHeader.
func Issues(issues []engine.Issue) string {
	var sb strings.Builder
	sb.WriteString(IssuesHeader)
	sb.WriteString("\n")
	for _, is := range issues {
		sb.WriteString("  ")
		sb.WriteString(is.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
