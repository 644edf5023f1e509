package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/dispatch"
)

// Config is the sample server configuration. Values come from defaults,
// then an optional YAML file, then command-line flags.
type Config struct {
	Addr      string          `yaml:"addr"`
	LogLevel  string          `yaml:"log_level"`
	Swagger   bool            `yaml:"swagger"`
	Pprof     bool            `yaml:"pprof"`
	JWTKey    string          `yaml:"jwt_key"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Info      dispatch.Info   `yaml:"info"`

	// Admins maps user names to bcrypt hashes. When set, the profiling
	// routes require basic auth.
	Admins map[string]string `yaml:"admins"`

	path string
}

// RateLimitConfig enables per-client rate limiting when Rate is positive.
type RateLimitConfig struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// RedisConfig enables the shared rate limiter when Addr is set.
type RedisConfig struct {
	Addr   string        `yaml:"addr"`
	Limit  int64         `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

func defaultConfig() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Swagger:  true,
		Info: dispatch.Info{
			Title:       "Sample API",
			Description: "Users service built on the dispatch core.",
			Version:     "1",
			Schemes:     []string{"http"},
			Consumes:    []string{"application/json"},
			Produces:    []string{"application/json"},
		},
	}
}

// loadConfig reads path over the defaults. An empty path yields the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided CLI flag
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	if flags.Changed("addr") {
		value, err := flags.GetString("addr")
		if err != nil {
			return err
		}
		cfg.Addr = strings.TrimSpace(value)
	}
	if flags.Changed("log-level") {
		value, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.TrimSpace(value)
	}
	if flags.Changed("swagger") {
		value, err := flags.GetBool("swagger")
		if err != nil {
			return err
		}
		cfg.Swagger = value
	}
	if flags.Changed("pprof") {
		value, err := flags.GetBool("pprof")
		if err != nil {
			return err
		}
		cfg.Pprof = value
	}
	return nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst == 0 {
		return errors.New("rate_limit.burst is required when rate_limit.rate is set")
	}
	if c.Redis.Addr != "" && c.Redis.Limit <= 0 {
		return errors.New("redis.limit is required when redis.addr is set")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
