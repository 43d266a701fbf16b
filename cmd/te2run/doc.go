// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the te2run command-line interface.
package cmd
