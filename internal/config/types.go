// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// EngineAuto selects the engine from the script file extension.
	EngineAuto EngineMode = "auto"
	// EngineShell forces the shell dialect engine.
	EngineShell EngineMode = "shell"
	// EngineJS forces the JavaScript dialect engine.
	EngineJS EngineMode = "js"

	// CounterStoreMemory keeps counters in process memory.
	CounterStoreMemory = "memory"
	// CounterStoreDatabase keeps counters in a table of the configured database.
	CounterStoreDatabase = "database"

	// DefaultCounterTable is the counter table name used when none is configured.
	DefaultCounterTable = "te2_counters"
)

var (
	// ErrInvalidEngineMode is returned when an EngineMode value is not recognized.
	ErrInvalidEngineMode = errors.New("invalid engine mode")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// EngineMode selects the script engine.
	EngineMode string

	// InvalidEngineModeError is returned when an EngineMode value is not recognized.
	// It wraps ErrInvalidEngineMode for errors.Is() compatibility.
	InvalidEngineModeError struct {
		Value EngineMode
	}

	// InvalidConfigError collects the field errors of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LogLevel is the logger threshold: error, warn, info, debug or trace.
		LogLevel string `json:"log_level" mapstructure:"log_level"`
		// Engine forces a script engine; "auto" picks it by file extension.
		Engine EngineMode `json:"engine" mapstructure:"engine"`
		// Strict compiles JavaScript scripts in strict mode.
		Strict bool `json:"strict" mapstructure:"strict"`
		// Trace prints every shell command before it runs.
		Trace bool `json:"trace" mapstructure:"trace"`
		// FailOnIssues skips execution when the script has error issues.
		// Off by default: issues are reported and the script still runs.
		FailOnIssues bool `json:"fail_on_issues" mapstructure:"fail_on_issues"`
		// WorkingDir is prefixed to paths that start with "/". Empty means
		// the process working directory.
		WorkingDir string `json:"working_dir" mapstructure:"working_dir"`
		// Variables are external variable values applied before var files and flags.
		Variables map[string]string `json:"variables" mapstructure:"variables"`
		// VarFiles are variable files loaded in order; a "?" suffix makes one optional.
		VarFiles []string `json:"var_files" mapstructure:"var_files"`
		// Counter configures the counter service.
		Counter CounterConfig `json:"counter" mapstructure:"counter"`
		// Database configures the database shared by services.
		Database DatabaseConfig `json:"database" mapstructure:"database"`
	}

	// CounterConfig selects where counters are stored.
	CounterConfig struct {
		Store string `json:"store" mapstructure:"store"`
		Table string `json:"table" mapstructure:"table"`
	}

	// DatabaseConfig selects the database. An empty driver means none.
	DatabaseConfig struct {
		Driver string `json:"driver" mapstructure:"driver"`
		DSN    string `json:"dsn" mapstructure:"dsn"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		Engine:       EngineAuto,
		Strict:       false,
		Trace:        false,
		FailOnIssues: false,
		WorkingDir:   "",
		Variables:    map[string]string{},
		VarFiles:     []string{},
		Counter: CounterConfig{
			Store: CounterStoreMemory,
			Table: DefaultCounterTable,
		},
	}
}

// Error implements the error interface.
func (e *InvalidEngineModeError) Error() string {
	return fmt.Sprintf("invalid engine mode %q (valid: auto, shell, js)", e.Value)
}

// Unwrap returns ErrInvalidEngineMode.
func (e *InvalidEngineModeError) Unwrap() error { return ErrInvalidEngineMode }

// IsValid reports whether m is a known engine mode.
func (m EngineMode) IsValid() (bool, []error) {
	switch m {
	case EngineAuto, EngineShell, EngineJS:
		return true, nil
	default:
		return false, []error{&InvalidEngineModeError{Value: m}}
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid checks the constraints the CUE schema does not express.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := c.Engine.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.Counter.Store == CounterStoreDatabase && c.Database.Driver == "" {
		errs = append(errs, errors.New("counter.store \"database\" requires database.driver"))
	}
	if c.Database.Driver != "" && strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver))
	}
	for i, f := range c.VarFiles {
		if strings.TrimSpace(strings.TrimSuffix(f, "?")) == "" {
			errs = append(errs, fmt.Errorf("var_files[%d] is empty", i))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}
