// SPDX-License-Identifier: MPL-2.0

package extvar

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidName is the sentinel error wrapped by InvalidNameError.
var ErrInvalidName = errors.New("invalid variable name")

// namePattern accepts identifiers valid in both the shell and the JavaScript dialect.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type (
	// Declaration is a named external variable as reported by an execution unit.
	Declaration struct {
		Name string
		Kind Kind
	}

	// InvalidNameError is returned when a variable name is not an identifier.
	InvalidNameError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid variable name %q (must match %s)", e.Value, namePattern.String())
}

// Unwrap returns ErrInvalidName so callers can use errors.Is for programmatic detection.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// ValidateName returns an error if name cannot be used as an external variable name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return &InvalidNameError{Value: name}
	}
	return nil
}

// Validate checks both the name and the kind of the declaration.
func (d Declaration) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	return d.Kind.Validate()
}

// String renders the declaration the way it is written in a directive.
func (d Declaration) String() string {
	return d.Kind.String() + " " + d.Name
}
