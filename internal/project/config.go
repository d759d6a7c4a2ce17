// Package project persists benchmark configuration and archived runs.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/packbench/internal/model"
)

// DefaultConfigDir returns the default directory for configuration.
// On all platforms this is ~/.packbench/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".packbench")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

// SaveConfig writes config to path as TOML, creating missing parent
// directories.
func SaveConfig(path string, config model.BenchConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(config); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

// LoadConfig reads a config from path. Keys missing from the file keep
// their defaults. If the file does not exist, it returns
// DefaultBenchConfig with no error.
func LoadConfig(path string) (model.BenchConfig, error) {
	config := model.DefaultBenchConfig()
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.DefaultBenchConfig(), nil
		}
		return model.BenchConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return model.BenchConfig{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	if config.TimeLimit.Duration < 0 {
		return model.BenchConfig{}, fmt.Errorf("time_limit must not be negative, got %s", config.TimeLimit)
	}
	return config, nil
}
