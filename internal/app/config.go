package app

import (
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are HCL files or directories; empty runs with defaults.
	ConfigPaths []string
	// Except names components left out of autobind, on top of those named
	// in the configuration files. Entries prefixed with "glob:" are
	// doublestar patterns.
	Except []string
	// Watch reloads configuration when the files change.
	Watch bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	if cfg.Watch && len(cfg.ConfigPaths) == 0 {
		return nil, fmt.Errorf("watch requires at least one configuration path")
	}
	for _, p := range cfg.Except {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("except patterns cannot be empty")
		}
	}
	return &cfg, nil
}

// serves reports whether Run keeps running until its context is cancelled.
func (c *Config) serves() bool {
	return c.Watch || c.HealthcheckPort > 0
}
