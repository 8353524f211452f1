package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "FISSURE_SERVER_HOST"
	EnvServerPort            = "FISSURE_SERVER_PORT"
	EnvServerReadTimeout     = "FISSURE_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "FISSURE_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "FISSURE_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds the listen address and timeouts of the HTTP service.
// Timeouts are Go duration strings.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the listen address. IPv6 hosts are bracketed.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, d := range c.timeouts(overlay) {
		if *d.overlay != "" {
			*d.field = *d.overlay
		}
	}
}

type timeoutField struct {
	name    string
	env     string
	def     string
	field   *string
	overlay *string
}

func (c *ServerConfig) timeouts(overlay *ServerConfig) []timeoutField {
	if overlay == nil {
		overlay = &ServerConfig{}
	}
	return []timeoutField{
		{"read_timeout", EnvServerReadTimeout, "1m", &c.ReadTimeout, &overlay.ReadTimeout},
		{"write_timeout", EnvServerWriteTimeout, "2m", &c.WriteTimeout, &overlay.WriteTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout, &overlay.ShutdownTimeout},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, d := range c.timeouts(nil) {
		if *d.field == "" {
			*d.field = d.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, d := range c.timeouts(nil) {
		if v := os.Getenv(d.env); v != "" {
			*d.field = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, d := range c.timeouts(nil) {
		v, err := time.ParseDuration(*d.field)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("invalid %s: must be positive", d.name)
		}
	}
	return nil
}

// mustDuration parses a duration already checked by validate.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
