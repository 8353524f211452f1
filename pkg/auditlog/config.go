package auditlog

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the location, permissions and locking parameters of the
// audit log file. FileMode is an octal permission string such as "0644".
type Config struct {
	Path        string `toml:"path"`
	LockTimeout string `toml:"lock_timeout"`
	RetryDelay  string `toml:"retry_delay"`
	FileMode    string `toml:"file_mode"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Path        string
	LockTimeout string
	RetryDelay  string
	FileMode    string
}

// Perm returns FileMode as permission bits, or 0644 when it is unset.
func (c *Config) Perm() os.FileMode {
	mode, err := parseFileMode(c.FileMode)
	if err != nil || mode == 0 {
		return 0o644
	}
	return mode
}

func parseFileMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if v > 0o777 {
		return 0, fmt.Errorf("%s has bits outside the permission range", s)
	}
	return os.FileMode(v), nil
}

// LockTimeoutDuration returns LockTimeout as a time.Duration.
func (c *Config) LockTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.LockTimeout)
	return d
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *Config) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
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
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.LockTimeout != "" {
		c.LockTimeout = overlay.LockTimeout
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
	if overlay.FileMode != "" {
		c.FileMode = overlay.FileMode
	}
}

func (c *Config) loadDefaults() {
	if c.Path == "" {
		c.Path = "data/fissure_audit.json"
	}
	if c.LockTimeout == "" {
		c.LockTimeout = "5s"
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "50ms"
	}
	if c.FileMode == "" {
		c.FileMode = "0644"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
	if env.LockTimeout != "" {
		if v := os.Getenv(env.LockTimeout); v != "" {
			c.LockTimeout = v
		}
	}
	if env.RetryDelay != "" {
		if v := os.Getenv(env.RetryDelay); v != "" {
			c.RetryDelay = v
		}
	}
	if env.FileMode != "" {
		if v := os.Getenv(env.FileMode); v != "" {
			c.FileMode = v
		}
	}
}

func (c *Config) validate() error {
	lt, err := time.ParseDuration(c.LockTimeout)
	if err != nil {
		return fmt.Errorf("invalid lock_timeout: %w", err)
	}
	if lt <= 0 {
		return fmt.Errorf("lock_timeout must be positive")
	}
	rd, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return fmt.Errorf("invalid retry_delay: %w", err)
	}
	if rd <= 0 {
		return fmt.Errorf("retry_delay must be positive")
	}
	mode, err := parseFileMode(c.FileMode)
	if err != nil {
		return fmt.Errorf("invalid file_mode: %w", err)
	}
	if mode&0o600 != 0o600 {
		return fmt.Errorf("file_mode %s must let the owner read and write", c.FileMode)
	}
	return nil
}
