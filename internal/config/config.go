// Package config holds synaptic configuration, loaded from an optional
// YAML file with defaults that work out of the box.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all synaptic configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Wander   WanderConfig   `yaml:"wander"`
	Decay    DecayConfig    `yaml:"decay"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type WanderConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
	MinIdleSeconds  int  `yaml:"min_idle_seconds"`
}

type DecayConfig struct {
	Rate            float64 `yaml:"rate"`
	IntervalMinutes int     `yaml:"interval_minutes"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37311,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Wander: WanderConfig{
			Enabled:         true,
			IntervalSeconds: 30,
			MinIdleSeconds:  25,
		},
		Decay: DecayConfig{
			Rate:            0.01,
			IntervalMinutes: 60,
		},
	}
}

// DefaultPath returns the default config file path: ~/.synaptic/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".synaptic", "config.yaml"), nil
}

// Load reads the config file at path, applying values over defaults.
// A missing file is not an error; defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
