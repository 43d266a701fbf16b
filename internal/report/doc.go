// SPDX-License-Identifier: MPL-2.0

// Package report formats the run summary lines: the completion message with
// its elapsed time and the list of blocking compile issues.
package report
