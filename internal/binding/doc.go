// SPDX-License-Identifier: MPL-2.0

// Package binding implements the external variable binding protocol: the
// kind classifier, the binding pass that runs before execution and the
// harvester that reports primitive values after it.
package binding
