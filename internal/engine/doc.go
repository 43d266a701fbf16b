// SPDX-License-Identifier: MPL-2.0

// Package engine defines the contracts between the binding protocol and the
// script engines: Compiler, CompiledUnit and ExecutionUnit.
//
// It also holds the dialect-independent pieces both engines are built from:
//   - Table: the declared external variables and their bindings
//   - UnitBase: logger, services, registry and issues of an execution unit
//   - OutputStreams and ReadInput: scoped stream acquisition through providers
//   - ParseDirectives and Load: @extern/@include directives and include expansion
//
// Dialect engines live in the shell and js subpackages.
package engine
