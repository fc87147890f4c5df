// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.hudcap.dev/hudcap/internal/types"
)

const (
	appName        = "hudcap"
	configFileName = "config.json"
)

// Config wraps the persisted settings.
type Config struct {
	types.Settings
}

// Load reads configuration from the user config directory.
// Returns defaults if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.Recognizer.Provider == "" {
		c.Recognizer.Provider = "scripted"
	}
}

func (c *Config) validate() error {
	if c.Display.MaxLines < 0 {
		return fmt.Errorf("display.max_lines must not be negative")
	}
	if c.Display.MaxFinalTranscripts < 0 {
		return fmt.Errorf("display.max_final_transcripts must not be negative")
	}
	if c.Display.ThrottleIntervalMs < 0 {
		return fmt.Errorf("display.throttle_interval_ms must not be negative")
	}
	switch c.Recognizer.Provider {
	case "scripted", "deepgram", "whisper-file":
	default:
		return fmt.Errorf("unknown recognizer provider: %s", c.Recognizer.Provider)
	}
	return nil
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
