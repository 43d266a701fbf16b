// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

type (
	// Logger is the logging contract handed to execution units and providers.
	Logger interface {
		// Log writes msg when level passes the threshold.
		Log(level Level, msg string)
		// IsLog reports whether a message at level would be written.
		IsLog(level Level) bool
	}

	// ThresholdLogger filters by a configured level and routes ERROR messages
	// to the error stream and everything else to the standard stream.
	ThresholdLogger struct {
		threshold Level
		out       *log.Logger
		err       *log.Logger
	}

	nopLogger struct{}
)

// New creates a ThresholdLogger writing to os.Stdout and os.Stderr.
func New(threshold Level) *ThresholdLogger {
	return NewWithWriters(threshold, os.Stdout, os.Stderr)
}

// NewWithWriters creates a ThresholdLogger with explicit streams.
func NewWithWriters(threshold Level, stdout, stderr io.Writer) *ThresholdLogger {
	opts := log.Options{
		Prefix: "log",
		// filtering happens in IsLog, the charm loggers accept everything
		Level: log.DebugLevel,
	}
	return &ThresholdLogger{
		threshold: threshold,
		out:       log.NewWithOptions(stdout, opts),
		err:       log.NewWithOptions(stderr, opts),
	}
}

// Discard returns a Logger that drops every message.
func Discard() Logger {
	return nopLogger{}
}

// IsLog reports whether level is less than or equal to the threshold.
func (l *ThresholdLogger) IsLog(level Level) bool {
	return level.IsLessOrEqual(l.threshold)
}

// Log writes msg to the error stream for LevelError and to the standard
// stream otherwise.
func (l *ThresholdLogger) Log(level Level, msg string) {
	if !l.IsLog(level) {
		return
	}
	target := l.out
	if level == LevelError {
		target = l.err
	}
	if level == LevelTrace {
		target.Log(level.charmLevel(), msg, "level", level.String())
		return
	}
	target.Log(level.charmLevel(), msg)
}

func (nopLogger) Log(Level, string) {}

func (nopLogger) IsLog(Level) bool { return false }

// Logf formats and logs through any Logger, skipping the formatting when the
// level is filtered out.
func Logf(l Logger, level Level, format string, args ...any) {
	if l == nil || !l.IsLog(level) {
		return
	}
	l.Log(level, fmt.Sprintf(format, args...))
}
