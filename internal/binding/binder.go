// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/te2run/te2run/internal/logging"
	"github.com/te2run/te2run/internal/provider"
	"github.com/te2run/te2run/pkg/extvar"
)

type (
	// Target is the part of an execution unit the binding pass writes to.
	Target interface {
		VariableNames() []string
		VariableKind(name string) extvar.Kind
		SetVariable(name, value string) error
		SetInput(name string, src provider.Source) error
		SetOutput(name string, sink provider.Sink) error
	}

	// FileResolver maps the raw value of a stream variable to a file path.
	FileResolver func(value string) (string, error)

	// Binder attaches caller supplied values to the declared variables of a unit.
	Binder struct {
		// Logger receives binding diagnostics and is handed to the providers.
		Logger logging.Logger
		// ResolveFile maps stream values to paths. Nil uses the value as is.
		ResolveFile FileResolver
	}

	// Summary records what the binding pass did with each declared name.
	Summary struct {
		// Bound lists names that received a value or provider.
		Bound []string
		// Skipped lists array and unsupported names left unbound.
		Skipped []string
		// Missing lists stream names with no supplied value.
		Missing []string
	}
)

// NewBinder creates a Binder that logs to logger.
func NewBinder(logger logging.Logger) *Binder {
	return &Binder{Logger: logger}
}

// Bind walks the declared names in order and applies the strategy chosen by
// Classify. A missing primitive value binds the empty string; a missing
// stream value leaves the variable unbound. Failures for one variable do not
// stop the pass: they are collected and returned together with the summary.
// Providers are created lazily and open nothing here.
func (b *Binder) Bind(target Target, values map[string]string) (*Summary, error) {
	logger := b.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	summary := &Summary{}
	var result *multierror.Error

	for _, name := range target.VariableNames() {
		kind := target.VariableKind(name)
		value, supplied := values[name]
		strategy := Classify(kind)

		var err error
		switch strategy {
		case StrategyBindValue:
			if !supplied {
				logging.Logf(logger, logging.LevelDebug, "no value for %s, binding empty string", name)
			}
			err = target.SetVariable(name, value)
		case StrategyBindInput:
			if !supplied {
				summary.Missing = append(summary.Missing, name)
				logging.Logf(logger, logging.LevelWarn, "no file for input %s, leaving it unbound", name)
				continue
			}
			var path string
			if path, err = b.resolve(value); err == nil {
				err = target.SetInput(name, provider.NewFileInput(path, logger))
			}
		case StrategyBindOutput:
			if !supplied {
				summary.Missing = append(summary.Missing, name)
				logging.Logf(logger, logging.LevelWarn, "no file for output %s, leaving it unbound", name)
				continue
			}
			var path string
			if path, err = b.resolve(value); err == nil {
				err = target.SetOutput(name, provider.NewFileOutput(path, logger))
			}
		case StrategySkipInputArray, StrategySkipOutputArray:
			summary.Skipped = append(summary.Skipped, name)
			logging.Logf(logger, logging.LevelDebug, "%s %s is not bound (array variables are not supported)", kind, name)
			continue
		case StrategyUnsupported:
			summary.Skipped = append(summary.Skipped, name)
			logging.Logf(logger, logging.LevelWarn, "variable %s has unsupported kind %s, leaving it unbound", name, kind)
			continue
		}

		if err != nil {
			result = multierror.Append(result, fmt.Errorf("bind %s: %w", name, err))
			continue
		}
		summary.Bound = append(summary.Bound, name)
	}

	return summary, result.ErrorOrNil()
}

func (b *Binder) resolve(value string) (string, error) {
	if b.ResolveFile == nil {
		return value, nil
	}
	return b.ResolveFile(value)
}
