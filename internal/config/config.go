// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds user-tunable options read from settings.yaml
type Settings struct {
	Author           string `yaml:"author,omitempty"`
	CompressionLevel int    `yaml:"compression_level"`
	WatchDebounceMS  int    `yaml:"watch_debounce_ms"`
}

// DefaultSettings returns the settings used when no settings file exists
func DefaultSettings() Settings {
	return Settings{
		CompressionLevel: 3,
		WatchDebounceMS:  500,
	}
}

// Config holds all application paths and settings
type Config struct {
	HomeDir      string
	PlanmarkDir  string
	HistoryDir   string
	DatabasePath string
	SettingsPath string
	Settings     Settings
}

// Load creates a Config instance with resolved paths rooted at baseDir,
// creating the application directories as needed. An empty baseDir roots
// everything at ~/.planmark.
func Load(baseDir string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	if baseDir == "" {
		baseDir = filepath.Join(home, ".planmark")
	}
	historyDir := filepath.Join(baseDir, "history")

	for _, dir := range []string{baseDir, historyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		HomeDir:      home,
		PlanmarkDir:  baseDir,
		HistoryDir:   historyDir,
		DatabasePath: filepath.Join(baseDir, "annotations.db"),
		SettingsPath: filepath.Join(baseDir, "settings.yaml"),
	}

	settings, err := loadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings

	return cfg, nil
}

// loadSettings reads settings.yaml, falling back to defaults when absent
func loadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings: %w", err)
	}
	if settings.CompressionLevel < 1 {
		settings.CompressionLevel = DefaultSettings().CompressionLevel
	}
	if settings.WatchDebounceMS < 1 {
		settings.WatchDebounceMS = DefaultSettings().WatchDebounceMS
	}
	return settings, nil
}

// SaveSettings writes the current settings back to settings.yaml
func (c *Config) SaveSettings() error {
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return os.WriteFile(c.SettingsPath, data, 0644)
}

// WatchDebounce returns the configured watch debounce as a duration
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Settings.WatchDebounceMS) * time.Millisecond
}
