package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyExtensions indicates a missing header or source suffix list
	ErrEmptyExtensions = errors.New("empty file extensions")

	// ErrOverlappingExtensions indicates a suffix listed as both header and source
	ErrOverlappingExtensions = errors.New("overlapping file extensions")

	// ErrInvalidIgnorePattern indicates an ignore pattern that does not compile
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")

	// ErrEmptyDatabase indicates a missing database path
	ErrEmptyDatabase = errors.New("empty database path")

	// ErrInvalidCacheSize indicates a negative lookup cache size
	ErrInvalidCacheSize = errors.New("invalid lookup cache size")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Headers) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one header extension required", ErrEmptyExtensions))
	}
	if len(cfg.Sources) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one source extension required", ErrEmptyExtensions))
	}

	headers := make(map[string]bool, len(cfg.Headers))
	for _, ext := range cfg.Headers {
		if strings.TrimSpace(ext) == "" {
			errs = append(errs, fmt.Errorf("%w: header extension cannot be blank", ErrEmptyExtensions))
			continue
		}
		headers[ext] = true
	}
	for _, ext := range cfg.Sources {
		if strings.TrimSpace(ext) == "" {
			errs = append(errs, fmt.Errorf("%w: source extension cannot be blank", ErrEmptyExtensions))
			continue
		}
		if headers[ext] {
			errs = append(errs, fmt.Errorf("%w: %q is both a header and a source extension", ErrOverlappingExtensions, ext))
		}
	}

	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnorePattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateStorage(cfg *StorageConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Database) == "" {
		errs = append(errs, fmt.Errorf("%w: database is required", ErrEmptyDatabase))
	}

	// Zero selects the default cache size.
	if cfg.LookupCacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: lookup_cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.LookupCacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMs <= 0 {
		return fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidDebounce, cfg.DebounceMs)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
