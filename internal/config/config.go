package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultSearchDebounceMs is the trailing-edge debounce window applied to
// the inbox search filter.
const DefaultSearchDebounceMs = 400

// Config represents the global ~/.rigdesk/config.toml.
type Config struct {
	DefaultProfile   string `toml:"default_profile"`
	ServerURL        string `toml:"server_url"`
	Language         string `toml:"language"`
	SearchDebounceMs int    `toml:"search_debounce_ms"`
}

// Load reads config from the given path. Returns an error if the file is
// missing; callers fall back to defaults in that case.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.SearchDebounceMs <= 0 {
		c.SearchDebounceMs = DefaultSearchDebounceMs
	}
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:5000/api"
	}
}
