// SPDX-License-Identifier: MPL-2.0

// Package varfile loads external variable values from files. The format is
// chosen by extension: .env, .yaml/.yml, .toml, .hcl and .cue. Every format
// contributes a flat name to string mapping.
package varfile
