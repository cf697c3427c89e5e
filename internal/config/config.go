package config

import "path/filepath"

// DataDir is the per-project directory holding the config file and database.
const DataDir = ".slotscan"

// Config represents the complete slotscan configuration.
// It can be loaded from .slotscan/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which files are scanned and which are ignored.
type PathsConfig struct {
	Headers []string `yaml:"headers" mapstructure:"headers"` // header file suffixes, e.g. ".h"
	Sources []string `yaml:"sources" mapstructure:"sources"` // source file suffixes, e.g. ".cpp"
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns relative to the root
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	// Database is the database path. Relative paths are resolved against the
	// scanned root.
	Database        string `yaml:"database" mapstructure:"database"`
	LookupCacheSize int    `yaml:"lookup_cache_size" mapstructure:"lookup_cache_size"` // class-name lookups kept in memory
}

// ResolverConfig tunes class-name resolution.
type ResolverConfig struct {
	// SkipOutermostScope stops the prefix search before the unqualified name.
	SkipOutermostScope bool `yaml:"skip_outermost_scope" mapstructure:"skip_outermost_scope"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Headers: []string{".h"},
			Sources: []string{".cpp"},
			Ignore: []string{
				".git/**",
				"build/**",
			},
		},
		Storage: StorageConfig{
			Database:        filepath.Join(DataDir, "slotscan.db"),
			LookupCacheSize: 1024,
		},
		Resolver: ResolverConfig{
			SkipOutermostScope: false,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// DatabasePath returns the database path for a scan of root.
func (c *Config) DatabasePath(root string) string {
	if filepath.IsAbs(c.Storage.Database) {
		return c.Storage.Database
	}
	return filepath.Join(root, c.Storage.Database)
}
