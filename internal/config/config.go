// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"github.com/setevik/faulttrace/internal/event"
)

// Config is the top-level configuration for faulttrace.
type Config struct {
	Tracer    TracerConfig    `toml:"tracer"`
	Buffer    BufferConfig    `toml:"buffer"`
	Callbacks CallbacksConfig `toml:"callbacks"`
	Guard     GuardConfig     `toml:"guard"`
	Filter    FilterConfig    `toml:"filter"`
	Log       LogConfig       `toml:"log"`
}

// TracerConfig selects between the real recorder and the no-op variant.
type TracerConfig struct {
	Enabled bool `toml:"enabled"`
}

// BufferConfig sizes the record store.
type BufferConfig struct {
	Capacity int `toml:"capacity"`
}

// CallbacksConfig bounds the observer registry.
type CallbacksConfig struct {
	Max int `toml:"max"`
	// Strict rejects registering the same observer twice. Meant to catch
	// test-harness mistakes, off by default.
	Strict bool `toml:"strict"`
}

// GuardConfig controls cross-context locking of the record store.
type GuardConfig struct {
	Enabled     bool `toml:"enabled"`
	MaxAttempts int  `toml:"max_attempts"`
	Spin        int  `toml:"spin"`
}

// FilterConfig seeds the severity filter table. Sources maps decimal source
// IDs to minimum-severity names; Default is the global fallback.
type FilterConfig struct {
	Default string            `toml:"default"`
	Sources map[string]string `toml:"sources"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Tracer:    TracerConfig{Enabled: true},
		Buffer:    BufferConfig{Capacity: 64},
		Callbacks: CallbacksConfig{Max: 8},
		Guard: GuardConfig{
			Enabled:     false,
			MaxAttempts: 1000,
			Spin:        10,
		},
		Filter: FilterConfig{
			Default: event.SevWarning.Label(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "faulttrace", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Buffer.Capacity < 1 {
		return fmt.Errorf("buffer.capacity must be at least 1, got %d", c.Buffer.Capacity)
	}
	if c.Callbacks.Max < 1 {
		return fmt.Errorf("callbacks.max must be at least 1, got %d", c.Callbacks.Max)
	}
	if _, err := event.ParseSeverity(c.Filter.Default); err != nil {
		return fmt.Errorf("filter.default: %w", err)
	}
	for key, name := range c.Filter.Sources {
		if _, _, err := parseFilterEntry(key, name); err != nil {
			return err
		}
	}
	return nil
}

// GlobalThreshold returns the configured global fallback severity.
func (c *Config) GlobalThreshold() (event.Severity, error) {
	return event.ParseSeverity(c.Filter.Default)
}

// SourceThresholds returns the configured per-source thresholds.
func (c *Config) SourceThresholds() (map[event.SourceID]event.Severity, error) {
	out := make(map[event.SourceID]event.Severity, len(c.Filter.Sources))
	for key, name := range c.Filter.Sources {
		src, sev, err := parseFilterEntry(key, name)
		if err != nil {
			return nil, err
		}
		out[src] = sev
	}
	return out, nil
}

func parseFilterEntry(key, name string) (event.SourceID, event.Severity, error) {
	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("filter.sources: source id %q is not a number: %w", key, err)
	}
	src, err := safecast.Conv[uint16](id)
	if err != nil {
		return 0, 0, fmt.Errorf("filter.sources: source id %q out of range: %w", key, err)
	}
	sev, err := event.ParseSeverity(name)
	if err != nil {
		return 0, 0, fmt.Errorf("filter.sources[%s]: %w", key, err)
	}
	return event.SourceID(src), sev, nil
}
