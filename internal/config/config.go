// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/te2run/te2run/internal/cueutil"
	"github.com/te2run/te2run/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "te2run"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the current directory when the
	// config directory has no config file.
	LocalConfigFileName = ".te2run.cue"
	// EnvPrefix prefixes environment overrides, e.g. TE2RUN_LOG_LEVEL or
	// TE2RUN_COUNTER_STORE.
	EnvPrefix = "TE2RUN"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the te2run directory under the user configuration
// directory ($XDG_CONFIG_HOME, ~/Library/Application Support or %APPDATA%).
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads the configuration described by opts and returns it together with
// the path of the file it came from ("" when only defaults apply).
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	var fileVars map[string]string
	if path != "" {
		raw, err := loadCUEIntoViper(v, path)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the configuration schema").
				Wrap(err).
				BuildError()
		}
		fileVars = stringMap(raw["variables"])
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	// viper lowercases map keys, variable names are case-sensitive
	cfg.Variables = fileVars
	if cfg.Variables == nil {
		cfg.Variables = map[string]string{}
	}

	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Run 'te2run config show' to see the effective configuration").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("engine", string(d.Engine))
	v.SetDefault("strict", d.Strict)
	v.SetDefault("trace", d.Trace)
	v.SetDefault("fail_on_issues", d.FailOnIssues)
	v.SetDefault("working_dir", d.WorkingDir)
	v.SetDefault("var_files", d.VarFiles)
	v.SetDefault("counter.store", d.Counter.Store)
	v.SetDefault("counter.table", d.Counter.Table)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
}

// findConfigFile returns the file to load: the explicit path, the file in the
// config directory, the local file, or "" when none exists.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'te2run config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if p := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}
	if !opts.SkipLocal && fileExists(LocalConfigFileName) {
		return LocalConfigFileName, nil
	}
	return "", nil
}

// loadCUEIntoViper validates the file against #Config and merges it into v.
// The decoded map is returned for values viper cannot keep intact.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var configMap map[string]any
	err = cueutil.Decode(configSchema, "#Config", data, &configMap,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return nil, err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	return configMap, nil
}

func stringMap(raw any) map[string]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration into dir (the user
// config directory when empty) unless a config file is already there. It
// returns the file path.
func CreateDefaultConfig(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(path) {
		return path, nil
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// GenerateCUE renders cfg in the configuration file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// te2run configuration\n\n")
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)
	fmt.Fprintf(&sb, "engine: %q\n", cfg.Engine)
	fmt.Fprintf(&sb, "strict: %v\n", cfg.Strict)
	fmt.Fprintf(&sb, "trace: %v\n", cfg.Trace)
	fmt.Fprintf(&sb, "fail_on_issues: %v\n", cfg.FailOnIssues)
	if cfg.WorkingDir != "" {
		fmt.Fprintf(&sb, "working_dir: %q\n", cfg.WorkingDir)
	}

	if len(cfg.Variables) > 0 {
		sb.WriteString("\nvariables: {\n")
		for _, k := range slices.Sorted(maps.Keys(cfg.Variables)) {
			fmt.Fprintf(&sb, "\t%q: %q\n", k, cfg.Variables[k])
		}
		sb.WriteString("}\n")
	}

	if len(cfg.VarFiles) > 0 {
		sb.WriteString("\nvar_files: [\n")
		for _, f := range cfg.VarFiles {
			fmt.Fprintf(&sb, "\t%q,\n", f)
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\ncounter: {\n")
	fmt.Fprintf(&sb, "\tstore: %q\n", cfg.Counter.Store)
	fmt.Fprintf(&sb, "\ttable: %q\n", cfg.Counter.Table)
	sb.WriteString("}\n")

	if cfg.Database.Driver != "" {
		sb.WriteString("\ndatabase: {\n")
		fmt.Fprintf(&sb, "\tdriver: %q\n", cfg.Database.Driver)
		fmt.Fprintf(&sb, "\tdsn: %q\n", cfg.Database.DSN)
		sb.WriteString("}\n")
	}

	return sb.String()
}
