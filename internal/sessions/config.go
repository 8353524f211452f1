package sessions

import (
	"fmt"
	"os"
	"time"
)

// Config holds session retention settings.
type Config struct {
	IdleTimeout   string `toml:"idle_timeout"`
	SweepInterval string `toml:"sweep_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	IdleTimeout   string
	SweepInterval string
}

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *Config) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *Config) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.IdleTimeout != "" {
		c.IdleTimeout = overlay.IdleTimeout
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
}

func (c *Config) loadDefaults() {
	if c.IdleTimeout == "" {
		c.IdleTimeout = "30m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.IdleTimeout != "" {
		if v := os.Getenv(env.IdleTimeout); v != "" {
			c.IdleTimeout = v
		}
	}
	if env.SweepInterval != "" {
		if v := os.Getenv(env.SweepInterval); v != "" {
			c.SweepInterval = v
		}
	}
}

func (c *Config) validate() error {
	idle, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid idle_timeout: %w", err)
	}
	sweep, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	if idle <= 0 || sweep <= 0 {
		return fmt.Errorf("idle_timeout and sweep_interval must be positive")
	}
	return nil
}
