// SPDX-License-Identifier: MPL-2.0

// Package counter provides named integer counters and the built-in script
// functions that manipulate them (createCounter, incrementCounter, ...).
//
// Counters live in a Store: MemoryStore for a single process, or SQLStore
// for a database/sql database (sqlite3 or mysql) so values survive runs.
package counter
