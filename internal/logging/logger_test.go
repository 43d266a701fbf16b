// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"error", LevelError},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"Info", LevelInfo},
		{"debug", LevelDebug},
		{"trace", LevelTrace},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestThresholdLogger_Filters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWithWriters(LevelInfo, &stdout, &stderr)

	if !l.IsLog(LevelError) || !l.IsLog(LevelInfo) {
		t.Error("expected ERROR and INFO to pass an INFO threshold")
	}
	if l.IsLog(LevelDebug) {
		t.Error("expected DEBUG to be filtered by an INFO threshold")
	}

	l.Log(LevelDebug, "hidden message")
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("expected no output for filtered message, got stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestThresholdLogger_RoutesErrorsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWithWriters(LevelTrace, &stdout, &stderr)

	l.Log(LevelError, "disk on fire")
	l.Log(LevelWarn, "disk warm")
	l.Log(LevelTrace, "disk spinning")

	if !strings.Contains(stderr.String(), "disk on fire") {
		t.Errorf("expected error message on stderr, got %q", stderr.String())
	}
	if strings.Contains(stdout.String(), "disk on fire") {
		t.Errorf("error message leaked to stdout: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "disk warm") {
		t.Errorf("expected warning on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "disk spinning") {
		t.Errorf("expected trace message on stdout, got %q", stdout.String())
	}
}

func TestLogf_SkipsFilteredLevels(t *testing.T) {
	var stdout bytes.Buffer
	l := NewWithWriters(LevelWarn, &stdout, &stdout)

	Logf(l, LevelInfo, "value=%d", 1)
	Logf(l, LevelWarn, "value=%d", 2)
	Logf(nil, LevelError, "ignored")

	out := stdout.String()
	if strings.Contains(out, "value=1") {
		t.Errorf("expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "value=2") {
		t.Errorf("expected warn message, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.IsLog(LevelError) {
		t.Error("expected discard logger to filter everything")
	}
	l.Log(LevelError, "nothing happens")
}
