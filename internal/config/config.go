// Package config provides configuration management for forumdesk.
//
// Config file locations (priority order):
//  1. $FORUMDESK_CONFIG
//  2. ./forumdesk.yaml
//  3. $XDG_CONFIG_HOME/forumdesk/config.yaml
//  4. ~/.config/forumdesk/config.yaml
//  5. /etc/forumdesk/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is the persisted application configuration.
type Config struct {
	Version  int           `yaml:"version"`
	LogLevel string        `yaml:"log_level,omitempty"`
	Storage  StorageConfig `yaml:"storage"`
	Session  SessionConfig `yaml:"session,omitempty"`
}

// StorageConfig selects and parameterizes the backing store.
type StorageConfig struct {
	Backend string `yaml:"backend"`       // sqlite or postgres
	Path    string `yaml:"path,omitempty"` // sqlite database file
	DSN     string `yaml:"dsn,omitempty"`  // postgres connection string
}

// SessionConfig tunes the login subsystem.
type SessionConfig struct {
	TTLHours int `yaml:"ttl_hours,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		LogLevel: "info",
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "./forumdesk.db",
		},
		Session: SessionConfig{TTLHours: 12},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Path == "" {
		c.Storage.Path = "./forumdesk.db"
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = 12
	}
}

// Validate rejects configurations that cannot produce a working store.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
