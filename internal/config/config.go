// Package config loads chatview startup configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings read once at startup. Display code derives
// its state from this; nothing re-reads the file mid-run.
type Config struct {
	Theme         string `yaml:"theme"`
	WordWrap      int    `yaml:"word_wrap"`
	ShowReasoning bool   `yaml:"show_reasoning"`
	SessionsDir   string `yaml:"sessions_dir"`
	Tools         Tools  `yaml:"tools"`
}

// Tools configures per-tool display behavior.
type Tools struct {
	// HideIndicator lists tool names whose execution indicator glyph is
	// suppressed when their calls are rendered.
	HideIndicator []string `yaml:"hide_indicator"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Theme:    "auto",
		WordWrap: 100,
	}
}

// Load reads the config file from CHATVIEW_CONFIG or ~/.chatview/config.yaml,
// then applies environment overrides. A missing file is not an error.
func Load() (Config, error) {
	path := os.Getenv("CHATVIEW_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".chatview", "config.yaml")
		}
	}

	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		} else {
			cfg = loaded
		}
	}

	if dir := os.Getenv("CHATVIEW_SESSIONS_DIR"); dir != "" {
		cfg.SessionsDir = dir
	}

	return cfg, nil
}

// LoadFile reads and validates a config file at an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.WordWrap < 0 {
		return Config{}, fmt.Errorf("config %s: word_wrap must not be negative", path)
	}

	return cfg, nil
}

// DefaultSessionsDir returns the transcript root: the configured dir when
// set, otherwise ~/.chatview/sessions.
func (c Config) DefaultSessionsDir() string {
	if c.SessionsDir != "" {
		return c.SessionsDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chatview", "sessions")
}
