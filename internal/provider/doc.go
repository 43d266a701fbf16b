// SPDX-License-Identifier: MPL-2.0

// Package provider adapts file paths into the stream providers bound to
// input and output variables.
//
// Providers are lazy: constructing one never touches the filesystem. A
// stream is acquired by OpenInput/OpenOutput and must be closed by the party
// that opened it. Open failures are logged through the provider's logger and
// reported as a nil stream, never as a panic; the engine treats a nil stream
// as a runtime fault of the script that requested it.
package provider
