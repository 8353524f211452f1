package classifier

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Providers.
const (
	ProviderLexicon = "lexicon"
	ProviderRemote  = "remote"
)

// DefaultLabels is the label set used when none is configured.
var DefaultLabels = []string{"arrufo", "puntual"}

// Config selects and parameterizes the classifier adapter.
type Config struct {
	Provider  string              `toml:"provider"`
	Labels    []string            `toml:"labels"`
	Endpoint  string              `toml:"endpoint"`
	Timeout   string              `toml:"timeout"`
	Sharpness float64             `toml:"sharpness"`
	Lexicon   map[string][]string `toml:"lexicon"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider string
	Labels   string
	Endpoint string
	Timeout  string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if c.Lexicon == nil && slices.Equal(c.Labels, DefaultLabels) {
		c.Lexicon = DefaultLexicon
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if len(overlay.Labels) > 0 {
		c.Labels = overlay.Labels
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Sharpness != 0 {
		c.Sharpness = overlay.Sharpness
	}
	if overlay.Lexicon != nil {
		c.Lexicon = overlay.Lexicon
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLexicon
	}
	if len(c.Labels) == 0 {
		c.Labels = append([]string(nil), DefaultLabels...)
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Sharpness == 0 {
		c.Sharpness = 2.0
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.Labels != "" {
		if v := os.Getenv(env.Labels); v != "" {
			var labels []string
			for l := range strings.SplitSeq(v, ",") {
				if l = strings.TrimSpace(l); l != "" {
					labels = append(labels, l)
				}
			}
			c.Labels = labels
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := NewLabelSet(c.Labels...); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.Sharpness < 0 {
		return fmt.Errorf("sharpness must be positive")
	}
	switch c.Provider {
	case ProviderLexicon:
	case ProviderRemote:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required for remote provider")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
