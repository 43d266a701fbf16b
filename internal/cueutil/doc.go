// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE compile, validate and decode steps shared by
// the configuration loader and .cue variable files.
package cueutil
