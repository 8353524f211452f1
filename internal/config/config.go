// Package config loads the service configuration from fissure.toml, an
// optional per-environment overlay, and FISSURE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/fissure/internal/classifier"
	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/internal/sessions"
	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/logging"
	"github.com/JaimeStill/fissure/pkg/storage"
)

const (
	BaseConfigFile       = "fissure.toml"
	OverlayConfigPattern = "fissure.%s.toml"

	EnvFissureConfig          = "FISSURE_CONFIG"
	EnvFissureEnv             = "FISSURE_ENV"
	EnvFissureShutdownTimeout = "FISSURE_SHUTDOWN_TIMEOUT"
	EnvFissureVersion         = "FISSURE_VERSION"
)

var loggingEnv = &logging.Env{
	Level:  "FISSURE_LOG_LEVEL",
	Format: "FISSURE_LOG_FORMAT",
}

var auditEnv = &auditlog.Env{
	Path:        "FISSURE_AUDIT_PATH",
	LockTimeout: "FISSURE_AUDIT_LOCK_TIMEOUT",
	RetryDelay:  "FISSURE_AUDIT_RETRY_DELAY",
	FileMode:    "FISSURE_AUDIT_FILE_MODE",
}

var classifierEnv = &classifier.Env{
	Provider: "FISSURE_CLASSIFIER_PROVIDER",
	Labels:   "FISSURE_CLASSIFIER_LABELS",
	Endpoint: "FISSURE_CLASSIFIER_ENDPOINT",
	Timeout:  "FISSURE_CLASSIFIER_TIMEOUT",
}

var sessionsEnv = &sessions.Env{
	IdleTimeout:   "FISSURE_SESSIONS_IDLE_TIMEOUT",
	SweepInterval: "FISSURE_SESSIONS_SWEEP_INTERVAL",
}

var reportEnv = &dashboard.Env{
	RecentLimit:   "FISSURE_REPORT_RECENT_LIMIT",
	TruncateAt:    "FISSURE_REPORT_TRUNCATE_AT",
	TableLimit:    "FISSURE_REPORT_TABLE_LIMIT",
	DefaultFormat: "FISSURE_REPORT_DEFAULT_FORMAT",
}

var storageEnv = &storage.Env{
	Provider:         "FISSURE_STORAGE_PROVIDER",
	Path:             "FISSURE_STORAGE_PATH",
	ContainerName:    "FISSURE_STORAGE_CONTAINER_NAME",
	ConnectionString: "FISSURE_STORAGE_CONNECTION_STRING",
	AccountURL:       "FISSURE_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the Fissure service and CLI.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	API             APIConfig         `toml:"api"`
	Logging         logging.Config    `toml:"logging"`
	Audit           auditlog.Config   `toml:"audit"`
	Classifier      classifier.Config `toml:"classifier"`
	Sessions        sessions.Config   `toml:"sessions"`
	Report          dashboard.Config  `toml:"report"`
	Storage         storage.Config    `toml:"storage"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the FISSURE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFissureEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. The base file is fissure.toml in the working
// directory unless FISSURE_CONFIG names another path. If no base file
// exists, defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvFissureConfig))
}

// LoadFile is Load with an explicit base file. An empty path means
// fissure.toml; an explicit path must exist.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if explicit {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Audit.Merge(&overlay.Audit)
	c.Classifier.Merge(&overlay.Classifier)
	c.Sessions.Merge(&overlay.Sessions)
	c.Report.Merge(&overlay.Report)
	c.Storage.Merge(&overlay.Storage)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Audit.Finalize(auditEnv); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Sessions.Finalize(sessionsEnv); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	if err := c.Report.Finalize(reportEnv); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvFissureShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvFissureVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// overlayPath returns fissure.<env>.toml beside base when FISSURE_ENV is
// set and the file exists.
func overlayPath(base string) string {
	if env := os.Getenv(EnvFissureEnv); env != "" {
		path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
