// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/te2run/te2run/internal/issue"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Engine != EngineAuto {
		t.Errorf("expected engine auto, got %s", cfg.Engine)
	}
	if cfg.FailOnIssues {
		t.Error("expected fail_on_issues to default to false")
	}
	if cfg.Counter.Store != CounterStoreMemory || cfg.Counter.Table != DefaultCounterTable {
		t.Errorf("unexpected counter defaults: %+v", cfg.Counter)
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("default config should be valid: %v", errs)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), SkipLocal: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %q", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
log_level: "debug"
engine: "js"
strict: true
fail_on_issues: true
variables: {
	inputData: "in.txt"
	greeting: "hello"
}
var_files: ["vars.env", "extra.yaml?"]
counter: store: "database"
database: {
	driver: "sqlite3"
	dsn: "file:counters.db"
}
`)

	cfg, path, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, SkipLocal: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("unexpected path %q", path)
	}

	want := DefaultConfig()
	want.LogLevel = "debug"
	want.Engine = EngineJS
	want.Strict = true
	want.FailOnIssues = true
	want.Variables = map[string]string{"inputData": "in.txt", "greeting": "hello"}
	want.VarFiles = []string{"vars.env", "extra.yaml?"}
	want.Counter.Store = CounterStoreDatabase
	want.Database = DatabaseConfig{Driver: "sqlite3", DSN: "file:counters.db"}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `engine: "python"`)
	_, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, SkipLocal: true})
	if err == nil {
		t.Fatal("expected schema violation")
	}
	if id, ok := issue.IDOf(err); !ok || id != issue.ConfigLoadFailedId {
		t.Errorf("expected ConfigLoadFailedId, got %d (%v)", id, ok)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `container_engine: "podman"`)
	if _, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, SkipLocal: true}); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestLoad_DatabaseStoreWithoutDriver(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `counter: store: "database"`)
	_, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, SkipLocal: true})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TE2RUN_LOG_LEVEL", "trace")
	t.Setenv("TE2RUN_COUNTER_TABLE", "from_env")
	t.Setenv("TE2RUN_FAIL_ON_ISSUES", "true")

	dir := writeConfig(t, `log_level: "warn"`)
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, SkipLocal: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt); loaded.Path != want {
		t.Errorf("path = %q, want %q", loaded.Path, want)
	}
	cfg := loaded.Config
	if cfg.LogLevel != "trace" {
		t.Errorf("expected env to override log_level, got %q", cfg.LogLevel)
	}
	if cfg.Counter.Table != "from_env" {
		t.Errorf("expected env to override counter.table, got %q", cfg.Counter.Table)
	}
	if !cfg.FailOnIssues {
		t.Error("expected env to override fail_on_issues")
	}
}

func TestCreateDefaultConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig failed: %v", err)
	}

	cfg, loaded, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir, SkipLocal: true})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if loaded != path {
		t.Errorf("loaded %q, want %q", loaded, path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// existing files are left alone
	if err := os.WriteFile(path, []byte(`trace: true`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "trace: true" {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestEngineMode_IsValid(t *testing.T) {
	t.Parallel()

	for _, m := range []EngineMode{EngineAuto, EngineShell, EngineJS} {
		if ok, _ := m.IsValid(); !ok {
			t.Errorf("%s should be valid", m)
		}
	}
	ok, errs := EngineMode("lua").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidEngineMode) {
		t.Errorf("lua: ok=%v errs=%v", ok, errs)
	}
}
