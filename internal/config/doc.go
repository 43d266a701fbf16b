// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// The configuration is read from config.cue in the user configuration
// directory (see ConfigDir), falling back to .te2run.cue in the current
// directory. Files are validated against the embedded #Config schema before
// being merged over the defaults. Environment variables prefixed with
// TE2RUN_ override file values.
package config
