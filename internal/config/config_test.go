package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .slotscan/config.yml and .slotscan/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects empty, blank and overlapping extensions
// - Validate() rejects ignore patterns that do not compile
// - Validate() rejects an empty database, a negative cache size and a non-positive debounce
// - Validate() returns multiple errors for multiple invalid fields
// - DatabasePath() resolves relative paths against the root

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, DataDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{".h"}, cfg.Paths.Headers)
	assert.Equal(t, []string{".cpp"}, cfg.Paths.Sources)
	assert.NotEmpty(t, cfg.Paths.Ignore)
	assert.Equal(t, filepath.Join(".slotscan", "slotscan.db"), cfg.Storage.Database)
	assert.Equal(t, 1024, cfg.Storage.LookupCacheSize)
	assert.False(t, cfg.Resolver.SkipOutermostScope)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
paths:
  headers: [".h", ".hpp"]
  sources: [".cpp", ".cc"]
  ignore: ["third_party/**"]
storage:
  database: /var/lib/slotscan/eaagles.db
  lookup_cache_size: 64
resolver:
  skip_outermost_scope: true
watch:
  debounce_ms: 250
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{".h", ".hpp"}, cfg.Paths.Headers)
	assert.Equal(t, []string{".cpp", ".cc"}, cfg.Paths.Sources)
	assert.Equal(t, []string{"third_party/**"}, cfg.Paths.Ignore)
	assert.Equal(t, "/var/lib/slotscan/eaagles.db", cfg.Storage.Database)
	assert.Equal(t, 64, cfg.Storage.LookupCacheSize)
	assert.True(t, cfg.Resolver.SkipOutermostScope)
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
}

func TestLoad_LoadsFromConfigYaml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yaml", `
paths:
  headers: [".hh"]
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{".hh"}, cfg.Paths.Headers)
}

func TestLoad_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
watch:
  debounce_ms: 1000
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Watch.DebounceMs)
	assert.Equal(t, Default().Paths, cfg.Paths)
	assert.Equal(t, Default().Storage, cfg.Storage)
}

func TestLoad_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
storage:
  database: from-file.db
  lookup_cache_size: 16
`)

	t.Setenv("SLOTSCAN_STORAGE_DATABASE", "from-env.db")
	t.Setenv("SLOTSCAN_RESOLVER_SKIP_OUTERMOST_SCOPE", "true")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Storage.Database)
	assert.Equal(t, 16, cfg.Storage.LookupCacheSize, "file value kept when no env override")
	assert.True(t, cfg.Resolver.SkipOutermostScope)
}

func TestLoad_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("SLOTSCAN_WATCH_DEBOUNCE_MS", "75")
	t.Setenv("SLOTSCAN_STORAGE_LOOKUP_CACHE_SIZE", "8")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Watch.DebounceMs)
	assert.Equal(t, 8, cfg.Storage.LookupCacheSize)
}

func TestLoad_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", "paths:\n  headers: [\".h\"\n  sources: bad")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
watch:
  debounce_ms: 0
`)

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDebounce)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_Extensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers []string
		sources []string
		want    error
	}{
		{"no headers", nil, []string{".cpp"}, ErrEmptyExtensions},
		{"no sources", []string{".h"}, nil, ErrEmptyExtensions},
		{"blank header", []string{" "}, []string{".cpp"}, ErrEmptyExtensions},
		{"overlap", []string{".h", ".inl"}, []string{".cpp", ".inl"}, ErrOverlappingExtensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Paths.Headers = tt.headers
			cfg.Paths.Sources = tt.sources
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_RejectsBadIgnorePattern(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Ignore = []string{"build/[unterminated"}

	err := Validate(cfg)
	assert.ErrorIs(t, err, ErrInvalidIgnorePattern)
	assert.Contains(t, err.Error(), "build/[unterminated")
}

func TestValidate_Storage(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Storage.Database = ""
	assert.ErrorIs(t, Validate(cfg), ErrEmptyDatabase)

	cfg = Default()
	cfg.Storage.LookupCacheSize = -1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidCacheSize)

	cfg = Default()
	cfg.Storage.LookupCacheSize = 0
	assert.NoError(t, Validate(cfg), "zero selects the default size")
}

func TestValidate_ReturnsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Headers = nil
	cfg.Storage.Database = ""
	cfg.Watch.DebounceMs = -5

	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "header extension")
	assert.Contains(t, msg, "database is required")
	assert.Contains(t, msg, "debounce_ms must be positive")
}

func TestConfig_DatabasePath(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, filepath.Join("/src/eaagles", ".slotscan", "slotscan.db"), cfg.DatabasePath("/src/eaagles"))

	cfg.Storage.Database = "/tmp/other.db"
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath("/src/eaagles"))
}
