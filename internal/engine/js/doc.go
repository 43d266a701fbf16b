// SPDX-License-Identifier: MPL-2.0

// Package js is the JavaScript dialect engine (.js scripts) built on goja.
//
// External variables are declared with "// @extern <kind> <name>" line
// comments. Primitives are global string variables, stream variables are
// used through readInput(name) and writeOutput(name, text), and registered
// functions are global functions returning strings.
package js
