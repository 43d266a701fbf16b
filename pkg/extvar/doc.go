// SPDX-License-Identifier: MPL-2.0

// Package extvar defines the external variable kinds that an execution unit
// reports for its declarations.
//
// A script declares each external variable with a kind:
//   - primitive: a string value exchanged directly with the unit
//   - input: a single readable file stream
//   - output: a single writable file stream
//   - inputArray / outputArray: stream arrays, declared but never bound
package extvar
