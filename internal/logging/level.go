// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Levels ordered from most to least severe. A message is logged when its
// level is less than or equal to the configured threshold.
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// ErrInvalidLevel is the sentinel error wrapped by InvalidLevelError.
var ErrInvalidLevel = errors.New("invalid log level")

type (
	// Level is the severity of a log message.
	Level int

	// InvalidLevelError is returned when a level name is not recognized.
	InvalidLevelError struct {
		Value string
	}
)

var levelNames = [...]string{"ERROR", "WARN", "INFO", "DEBUG", "TRACE"}

// Error implements the error interface.
func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: error, warn, info, debug, trace)", e.Value)
}

// Unwrap returns ErrInvalidLevel so callers can use errors.Is for programmatic detection.
func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }

// ParseLevel maps a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, s) {
			return Level(i), nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return LevelWarn, nil
	}
	return LevelInfo, &InvalidLevelError{Value: s}
}

// String returns the upper-case level name.
func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// IsLessOrEqual reports whether l is at least as severe as threshold.
func (l Level) IsLessOrEqual(threshold Level) bool {
	return l <= threshold
}

// charmLevel maps to the charmbracelet/log level used for rendering.
// TRACE has no charm equivalent and renders as debug.
func (l Level) charmLevel() log.Level {
	switch l {
	case LevelError:
		return log.ErrorLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelInfo:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}
