// Package config holds the externally supplied settings: server
// addresses, timeouts, retry bounds, storage knobs. All values come
// from flags, environment (SNAPGRADE_ prefix) or a config file; the
// core packages never read the environment themselves.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	// ServerURL is the statically configured grading server address,
	// also the resolver's fail-open fallback.
	ServerURL string `mapstructure:"server_url"`

	// FallbackURLs are probed in order before the first upload
	// attempt.
	FallbackURLs []string `mapstructure:"fallback_urls"`

	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`

	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db"`

	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	HistoryCapacity int           `mapstructure:"history_capacity"`

	// Language selects the user-facing message catalog (en, zh).
	Language string `mapstructure:"lang"`
}

// SetDefaults registers the production defaults on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8000")
	v.SetDefault("fallback_urls", []string{})
	v.SetDefault("probe_timeout", 3*time.Second)
	v.SetDefault("request_timeout", 4*time.Minute)
	v.SetDefault("max_attempts", 3)
	v.SetDefault("cache_ttl", 30*time.Second)
	v.SetDefault("history_capacity", 100)
	v.SetDefault("lang", "en")
}

// Load resolves the configuration from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("SNAPGRADE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
