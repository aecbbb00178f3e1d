// Package config reads and writes the tool configuration at
// ~/.fit2csv/config.json. Everything in it is optional; the zero config is
// usable and command-line flags override whatever is loaded.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration.
type Config struct {
	Export ExportConfig `json:"export"`
	Charts ChartConfig  `json:"charts"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	// Dir is the default output directory. Empty means "next to the input
	// file".
	Dir string `json:"dir"`
	// Parquet enables the parquet record export by default.
	Parquet bool `json:"parquet"`
}

// ChartConfig holds chart generation defaults.
type ChartConfig struct {
	Basic    bool `json:"basic"`
	Advanced bool `json:"advanced"`
}

// ErrNoConfig is returned when the config file doesn't exist.
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Charts: ChartConfig{Basic: true},
	}
}

// Load reads the configuration from ~/.fit2csv/config.json.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to ~/.fit2csv/config.json.
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to an explicit path, creating the parent
// directory if needed.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the loaded values for obvious mistakes.
func (c *Config) Validate() error {
	if c.Export.Dir != "" {
		if info, err := os.Stat(c.Export.Dir); err == nil && !info.IsDir() {
			return fmt.Errorf("export.dir %q is not a directory", c.Export.Dir)
		}
	}
	return nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fit2csv", "config.json"), nil
}
