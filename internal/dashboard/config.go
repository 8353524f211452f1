package dashboard

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds report generation settings.
type Config struct {
	RecentLimit   int    `toml:"recent_limit"`
	TruncateAt    int    `toml:"truncate_at"`
	TableLimit    int    `toml:"table_limit"`
	DefaultFormat string `toml:"default_format"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	RecentLimit   string
	TruncateAt    string
	TableLimit    string
	DefaultFormat string
}

// Format returns DefaultFormat parsed. It is valid after Finalize.
func (c *Config) Format() Format {
	f, _ := ParseFormat(c.DefaultFormat)
	return f
}

// Options returns report options for the given declared labels.
func (c *Config) Options(labels []string) Options {
	return Options{
		Labels:      labels,
		RecentLimit: c.RecentLimit,
		TruncateAt:  c.TruncateAt,
	}
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
	if overlay.RecentLimit != 0 {
		c.RecentLimit = overlay.RecentLimit
	}
	if overlay.TruncateAt != 0 {
		c.TruncateAt = overlay.TruncateAt
	}
	if overlay.TableLimit != 0 {
		c.TableLimit = overlay.TableLimit
	}
	if overlay.DefaultFormat != "" {
		c.DefaultFormat = overlay.DefaultFormat
	}
}

func (c *Config) loadDefaults() {
	if c.RecentLimit == 0 {
		c.RecentLimit = 10
	}
	if c.TruncateAt == 0 {
		c.TruncateAt = 50
	}
	if c.TableLimit == 0 {
		c.TableLimit = DefaultListLimit
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = string(FormatText)
	}
}

func (c *Config) loadEnv(env *Env) {
	envInt(env.RecentLimit, &c.RecentLimit)
	envInt(env.TruncateAt, &c.TruncateAt)
	envInt(env.TableLimit, &c.TableLimit)
	if env.DefaultFormat != "" {
		if v := os.Getenv(env.DefaultFormat); v != "" {
			c.DefaultFormat = v
		}
	}
}

func envInt(name string, dst *int) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be positive")
	}
	if c.TruncateAt < 1 {
		return fmt.Errorf("truncate_at must be positive")
	}
	if c.TableLimit < 1 {
		return fmt.Errorf("table_limit must be positive")
	}
	if _, err := ParseFormat(c.DefaultFormat); err != nil {
		return fmt.Errorf("invalid default_format: %w", err)
	}
	return nil
}
