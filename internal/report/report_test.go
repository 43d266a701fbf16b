// SPDX-License-Identifier: MPL-2.0

package report

import (
	"testing"
	"time"

	"github.com/te2run/te2run/internal/engine"
)

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.000"},
		{5 * time.Millisecond, "0.005"},
		{1500 * time.Microsecond, "0.001"},
		{12 * time.Second, "12.000"},
		{1234567 * time.Millisecond, "1 234.567"},
		{1234567890 * time.Millisecond, "1 234 567.890"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.d); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCompleted(t *testing.T) {
	t.Parallel()

	want := "Completed successfully in 2.050 seconds."
	if got := Completed(2050 * time.Millisecond); got != want {
		t.Errorf("Completed() = %q, want %q", got, want)
	}
}

func TestIssues(t *testing.T) {
	t.Parallel()

	got := Issues([]engine.Issue{{File: "a.te2", Line: 2, Message: "bad"}})
	want := "Errors:\n  a.te2:2: error: bad\n"
	if got != want {
		t.Errorf("Issues() = %q, want %q", got, want)
	}
}
