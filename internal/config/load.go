package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration. Priority, lowest to
// highest: built-in defaults, config file, CLI flags. A missing config
// file is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// loadFromFile merges a YAML file over cfg's current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolveConfigPath picks the config file to read: the --config flag
// if given, then ./config.yaml, then the per-user config dir.
func resolveConfigPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	for _, path := range []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
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
		return filepath.Join(home, "Library", "Application Support", "Voidreach")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Voidreach")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "voidreach")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "voidreach")
	}
}
