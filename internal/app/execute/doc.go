// SPDX-License-Identifier: MPL-2.0

// Package execute runs one script end to end: it picks the engine, compiles,
// binds external variables, opens the services used by built-in functions,
// executes and reports the output variables. The CLI commands are thin
// wrappers around it.
package execute
