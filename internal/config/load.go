package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config value")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "M2Skin")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "M2Skin")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "m2skin")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "m2skin")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Preview.Size <= 0:
		return fmt.Errorf("preview.size %d: %w", c.Preview.Size, ErrInvalid)
	case c.Preview.Supersample < 1:
		return fmt.Errorf("preview.supersample %d: %w", c.Preview.Supersample, ErrInvalid)
	case c.Preview.Frames < 0:
		return fmt.Errorf("preview.frames %d: %w", c.Preview.Frames, ErrInvalid)
	case c.Preview.Step <= 0:
		return fmt.Errorf("preview.step %v: %w", c.Preview.Step, ErrInvalid)
	case c.Crowd.Instances < 0 || c.Crowd.Workers < 1:
		return fmt.Errorf("crowd %d instances on %d workers: %w", c.Crowd.Instances, c.Crowd.Workers, ErrInvalid)
	case c.Asset.Scale <= 0:
		return fmt.Errorf("asset.scale %v: %w", c.Asset.Scale, ErrInvalid)
	}
	return nil
}
