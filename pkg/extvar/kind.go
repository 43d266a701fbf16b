// SPDX-License-Identifier: MPL-2.0

package extvar

import (
	"errors"
	"fmt"
	"strings"
)

// Kind values. The zero value is KindUnknown so that an unset kind never
// silently classifies as Primitive.
const (
	KindUnknown Kind = iota
	KindPrimitive
	KindInput
	KindInputArray
	KindOutput
	KindOutputArray
)

// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid variable kind")

type (
	// Kind is the declared kind of an external variable.
	Kind int

	// InvalidKindError is returned when a kind name is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value string
	}
)

var kindNames = map[Kind]string{
	KindPrimitive:   "primitive",
	KindInput:       "input",
	KindInputArray:  "inputArray",
	KindOutput:      "output",
	KindOutputArray: "outputArray",
}

// Error implements the error interface.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid variable kind %q (valid: primitive, input, inputArray, output, outputArray)", e.Value)
}

// Unwrap returns ErrInvalidKind so callers can use errors.Is for programmatic detection.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// ParseKind maps a directive kind name to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return KindUnknown, &InvalidKindError{Value: s}
}

// String returns the directive name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Validate returns an error if the kind is not one of the five declared kinds.
func (k Kind) Validate() error {
	if _, ok := kindNames[k]; !ok {
		return &InvalidKindError{Value: k.String()}
	}
	return nil
}

// IsStream reports whether the kind is backed by a file stream rather than a value.
func (k Kind) IsStream() bool {
	return k == KindInput || k == KindOutput
}

// IsArray reports whether the kind is one of the array variants.
func (k Kind) IsArray() bool {
	return k == KindInputArray || k == KindOutputArray
}
