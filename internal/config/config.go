// Package config loads knecht settings from TOML files. Settings merge from
// three layers, lowest precedence first: built-in defaults, the global file
// in the XDG config directory, and the project-local file inside the data
// directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config is the top-level configuration.
type Config struct {
	// DataDir is where the task files live, relative to the working
	// directory unless absolute.
	DataDir string `toml:"data_dir"`

	Log    LogConfig    `toml:"log"`
	Sentry SentryConfig `toml:"sentry"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format"`
}

// SentryConfig holds the settings for importing Sentry issues as tasks.
// The auth token is deliberately not a config key; it comes from the
// SENTRY_AUTH_TOKEN environment variable so it never lands in a dotfile.
type SentryConfig struct {
	BaseURL      string `toml:"base_url"`
	Organization string `toml:"organization"`
	Project      string `toml:"project"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: ".knecht",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Sentry: SentryConfig{
			BaseURL: "https://sentry.io/api/0",
		},
	}
}

// Load reads and merges configuration from the global and project paths.
// Missing files are not errors; malformed TOML is.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := Default()

	if globalPath != "" {
		if err := mergeFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}
	if projectPath != "" {
		if err := mergeFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}
	return cfg, nil
}

// LoadDefault loads configuration from the conventional paths.
// Global: $XDG_CONFIG_HOME/knecht/config.toml
// Project: .knecht/config.toml (relative to cwd)
func LoadDefault() (*Config, error) {
	globalPath := filepath.Join(xdg.ConfigHome, "knecht", "config.toml")
	projectPath := filepath.Join(".knecht", "config.toml")
	return Load(globalPath, projectPath)
}

// mergeFile decodes a TOML file over the base config. Keys absent from the
// file keep their current values; toml.Decode only touches keys it sees.
func mergeFile(base *Config, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), base); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
