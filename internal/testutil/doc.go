// SPDX-License-Identifier: MPL-2.0

// Package testutil provides file helpers shared by the engine, orchestration
// and CLI tests. Every helper fails the test immediately on error.
package testutil
