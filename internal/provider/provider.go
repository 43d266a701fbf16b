// SPDX-License-Identifier: MPL-2.0

package provider

import "io"

type (
	// Properties is the string-keyed metadata bag shared by every provider.
	// Keys carry no defined semantics beyond storage (for example an encoding
	// hint set by the engine).
	Properties interface {
		// Property returns the value stored under name, reporting false when absent.
		Property(name string) (string, bool)
		// SetProperty stores value under name, replacing any previous value.
		SetProperty(name, value string)
	}

	// Source is a readable resource bound to an input variable.
	Source interface {
		Properties
		// OpenInput returns a fresh reader positioned at the start of the
		// resource, or nil when it cannot be opened. The caller closes it.
		OpenInput() io.ReadCloser
		// Close releases provider-level resources.
		Close() error
	}

	// Sink is a writable resource bound to an output variable.
	Sink interface {
		Properties
		// OpenOutput returns a fresh writer that truncates the resource, or
		// nil when it cannot be opened. The caller closes it.
		OpenOutput() io.WriteCloser
		// Close releases provider-level resources.
		Close() error
	}

	// propertyBag is the map-backed Properties implementation.
	propertyBag struct {
		values map[string]string
	}
)

func newPropertyBag() propertyBag {
	return propertyBag{values: make(map[string]string)}
}

// Property returns the value stored under name.
func (b *propertyBag) Property(name string) (string, bool) {
	v, ok := b.values[name]
	return v, ok
}

// SetProperty stores value under name.
func (b *propertyBag) SetProperty(name, value string) {
	b.values[name] = value
}
