// SPDX-License-Identifier: MPL-2.0

// Package services assembles the run-scoped services (database handle and
// counter service) that built-in functions resolve by name.
package services
