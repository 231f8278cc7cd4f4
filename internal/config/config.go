// Package config provides configuration types and defaults for fieldunits.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/tracing"
	"github.com/zjrosen/fieldunits/internal/units"
)

// Config holds all configuration options for fieldunits.
type Config struct {
	Catalogs   []string        `mapstructure:"catalogs"`    // standard catalogs registered at startup, "name" or "name.subset"
	FormatsDir string          `mapstructure:"formats_dir"` // directory of format definition files
	Display    DisplayConfig   `mapstructure:"display"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Tracing    tracing.Config  `mapstructure:"tracing"`
	Watch      WatchConfig     `mapstructure:"watch"`
	Flags      map[string]bool `mapstructure:"flags"`
}

// DisplayConfig controls how fields and tables are printed.
type DisplayConfig struct {
	UseLatex  bool   `mapstructure:"use_latex"`  // LaTeX symbols in labels
	Output    string `mapstructure:"output"`     // "table" (default) or "json"
	WrapWidth int    `mapstructure:"wrap_width"` // description wrap width in tables, 0 disables
}

// CacheConfig tunes the parsed-unit cache.
type CacheConfig struct {
	// UnitTTL is how long a parsed unit expression stays cached.
	// Default: 30m
	UnitTTL time.Duration `mapstructure:"unit_ttl"`

	// CleanupInterval is how often expired entries are purged.
	// Default: 1h
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// UnitOptions converts the cache section to unit-system options.
func (c CacheConfig) UnitOptions() units.Options {
	return units.Options{CacheTTL: c.UnitTTL, CleanupInterval: c.CleanupInterval}
}

// WatchConfig controls `table convert --watch`.
type WatchConfig struct {
	// Debounce coalesces bursts of file events.
	// Default: 200ms
	Debounce time.Duration `mapstructure:"debounce"`
}

// Output formats accepted by display.output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/fieldunits/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fieldunits", "traces", "traces.jsonl")
}

// DefaultCatalogs returns the catalogs registered when none are configured.
// The materials catalog overlaps the domain catalogs and is opt-in.
func DefaultCatalogs() []string {
	return []string{"electromagnetic", "thermal", "mechanical", "hydraulics"}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	unitOpts := units.DefaultOptions()
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Catalogs: DefaultCatalogs(),
		Display: DisplayConfig{
			UseLatex:  false,
			Output:    OutputTable,
			WrapWidth: 60,
		},
		Cache: CacheConfig{
			UnitTTL:         unitOpts.CacheTTL,
			CleanupInterval: unitOpts.CleanupInterval,
		},
		Tracing: tr,
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Validate checks every section.
func Validate(cfg Config) error {
	if err := ValidateCatalogs(cfg.Catalogs, nil); err != nil {
		return err
	}
	if err := ValidateDisplay(cfg.Display); err != nil {
		return err
	}
	if err := ValidateCache(cfg.Cache); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return nil
}

// ValidateCatalogs checks catalog entries. When known is non-nil every
// entry's catalog part must be one of them.
func ValidateCatalogs(entries []string, known []string) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e == "" {
			return fmt.Errorf("catalogs[%d]: name is required", i)
		}
		if seen[e] {
			return fmt.Errorf("catalogs[%d]: %q listed twice", i, e)
		}
		seen[e] = true

		if known != nil {
			name := e
			if dot := strings.IndexByte(e, '.'); dot >= 0 {
				name = e[:dot]
			}
			if !slices.Contains(known, name) {
				return fmt.Errorf("catalogs[%d]: unknown catalog %q", i, name)
			}
		}
	}
	return nil
}

// ValidateDisplay checks display configuration for errors.
func ValidateDisplay(d DisplayConfig) error {
	switch d.Output {
	case "", OutputTable, OutputJSON:
	default:
		return fmt.Errorf("display.output must be \"table\" or \"json\", got %q", d.Output)
	}
	if d.WrapWidth < 0 {
		return fmt.Errorf("display.wrap_width must not be negative, got %d", d.WrapWidth)
	}
	return nil
}

// ValidateCache checks cache configuration for errors.
func ValidateCache(c CacheConfig) error {
	if c.UnitTTL < 0 {
		return fmt.Errorf("cache.unit_ttl must not be negative, got %s", c.UnitTTL)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval must not be negative, got %s", c.CleanupInterval)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}

	if tr.Exporter != "" {
		switch tr.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tr.Enabled {
		if tr.Exporter == "file" && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == "otlp" && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# fieldunits configuration

# Standard catalogs registered into the field registry at startup.
# Use "catalog" for a whole catalog or "catalog.subset" for a named subset.
# Available: electromagnetic, thermal, mechanical, hydraulics, materials
# (materials overlaps the others; enable it alone or by subset)
catalogs:
  - electromagnetic
  - thermal
  - mechanical
  - hydraulics

# Directory of data-file format definitions (.json, .yaml, .yml, .toml)
# formats_dir: ./formats

# Output settings
display:
  use_latex: false   # Use LaTeX symbols in labels
  output: table      # table (default) or json
  wrap_width: 60     # Wrap descriptions in tables; 0 disables wrapping

# Parsed unit cache
cache:
  unit_ttl: 30m
  cleanup_interval: 1h

# Distributed tracing of format loading and table conversion
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/fieldunits/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# table convert --watch
watch:
  debounce: 200ms

# Feature flags (run 'fieldunits flags' to list them)
# flags:
#   strict-format-units: false
#   symbol-fallback: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
