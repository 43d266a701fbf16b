// SPDX-License-Identifier: MPL-2.0

// Package shell is the shell dialect engine (.te2 and .sh scripts), built on
// the mvdan/sh parser and interpreter.
//
// External variables are declared with "# @extern <kind> <name>" comments.
// Primitive values are exported into the script environment and written
// back with te2_set; stream variables are reached through te2_read and
// te2_write. Registered functions are callable as commands and print their
// result.
package shell
