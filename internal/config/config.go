// Package config loads optional operator defaults from
// ~/.config/reconkit/config.yaml. Flags always win; the file only fills
// in values the operator did not pass.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the supported defaults. All fields are optional.
type Config struct {
	// Concurrency is the fan-out bound for enum runs.
	Concurrency int `yaml:"concurrency"`

	// TimeoutSeconds is the per-probe timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	Tunnel struct {
		// InstallDir receives downloaded provider binaries.
		InstallDir string `yaml:"install_dir"`
		// ConfigDir receives generated provider configuration.
		ConfigDir string `yaml:"config_dir"`
	} `yaml:"tunnel"`
}

// Timeout converts TimeoutSeconds, zero when unset.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultPath is ~/.config/reconkit/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reconkit", "config.yaml")
}

// Load reads the config file. A missing file is not an error: it
// returns the zero config so every default stays in effect.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
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
	return cfg, nil
}
