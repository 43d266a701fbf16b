// SPDX-License-Identifier: MPL-2.0

// Package logging provides the leveled logger handed to execution units and
// resource providers. Rendering is delegated to charmbracelet/log.
package logging
