// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath forces a specific file. It must exist.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir() in the lookup.
		ConfigDirPath string
		// SkipLocal disables the lookup of .te2run.cue in the current directory.
		SkipLocal bool
	}

	// Loaded is a configuration together with the file it came from. Path is
	// empty when only defaults and environment overrides applied.
	Loaded struct {
		Config *Config
		Path   string
	}

	// Provider loads configuration. The CLI depends on it so tests can
	// substitute a fixed configuration.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
	}

	cueProvider struct{}
)

// NewProvider returns the Provider backed by Load.
func NewProvider() Provider {
	return cueProvider{}
}

func (cueProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}
