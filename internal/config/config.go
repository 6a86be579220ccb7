// Package config loads and validates feed build configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/eventfeed/internal/logging"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Input   InputConfig    `mapstructure:"input"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Enrich  EnrichConfig   `mapstructure:"enrich"`
	Logging logging.Config `mapstructure:"logging"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// InputConfig locates the markdown source.
type InputConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig configures outbound page fetches.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// EnrichConfig governs the metadata fan-out.
type EnrichConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxConcurrency   int     `mapstructure:"max_concurrency"`
	RateLimitPerHost float64 `mapstructure:"rate_limit_per_host"`
	RespectRobots    bool    `mapstructure:"respect_robots"`
}

// MetricsConfig controls the optional Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EVENTFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "README.md")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "eventfeed/1.0")
	v.SetDefault("enrich.enabled", true)
	v.SetDefault("enrich.max_concurrency", 0)
	v.SetDefault("enrich.rate_limit_per_host", 0)
	v.SetDefault("enrich.respect_robots", false)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("metrics.textfile", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Input.Path) == "" {
		return fmt.Errorf("input.path must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Enrich.MaxConcurrency < 0 {
		return fmt.Errorf("enrich.max_concurrency must be >= 0")
	}
	if c.Enrich.RateLimitPerHost < 0 {
		return fmt.Errorf("enrich.rate_limit_per_host must be >= 0")
	}
	return nil
}

// RequestTimeout converts the HTTP timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
