// Package config loads and saves the viewer configuration.
//
// Configuration lives in a single YAML file. A missing file is not an
// error; defaults apply and the file is created on first save.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file is absent or a field is unset.
const (
	DefaultCacheRadius = 10
	DefaultProbeRadius = 1
)

// Config is the persisted viewer configuration.
type Config struct {
	// Patterns are known filename patterns, tried in order when a plain
	// file path is opened. Accepted patterns are appended here.
	Patterns []string `yaml:"patterns"`

	// CacheRadius is the number of frames kept loaded on each side of
	// the current frame.
	CacheRadius int `yaml:"cache_radius"`

	// ProbeRadius is how many neighbor indices are probed on each side
	// when deciding whether a pattern match is a real sequence.
	ProbeRadius int `yaml:"probe_radius"`

	// LogFile, when set, enables logging to that path.
	LogFile string `yaml:"log_file,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		CacheRadius: DefaultCacheRadius,
		ProbeRadius: DefaultProbeRadius,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, "seqview", "config.yaml"), nil
}

// Load reads the configuration at path. A missing file yields defaults;
// malformed YAML is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.CacheRadius < 1 {
		cfg.CacheRadius = DefaultCacheRadius
	}
	if cfg.ProbeRadius < 1 {
		cfg.ProbeRadius = DefaultProbeRadius
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// AddPattern records a newly accepted pattern. Reports whether the list
// changed.
func (c *Config) AddPattern(pat string) bool {
	for _, p := range c.Patterns {
		if p == pat {
			return false
		}
	}
	c.Patterns = append(c.Patterns, pat)
	return true
}
