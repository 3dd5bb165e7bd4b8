// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the process configuration from a YAML file and
// AVAILABILITY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "AVAILABILITY_"

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the process configuration.
type Config struct {
	Method          availability.CheckMethod `yaml:"method"`
	Timeout         time.Duration            `yaml:"timeout"`
	MaxRetries      int                      `yaml:"max_retries"`
	Retry           Retry                    `yaml:"retry"`
	Resolvers       []string                 `yaml:"resolvers"`
	RateLimitDelay  time.Duration            `yaml:"rate_limit_delay"`
	UnsupportedTLDs []string                 `yaml:"unsupported_tlds"`
	TLDs            []string                 `yaml:"tlds"`
	ChunkSize       int                      `yaml:"chunk_size"`
	ChunkDelay      time.Duration            `yaml:"chunk_delay"`
	LogLevel        string                   `yaml:"log_level"`
	Cache           Cache                    `yaml:"cache"`
	Server          Server                   `yaml:"server"`
	Watch           Watch                    `yaml:"watch"`
}

// Retry mirrors [availability.RetryConfig].
type Retry struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Exponential  bool          `yaml:"exponential"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// Cache selects the result cache. An empty RedisAddr keeps results in
// process memory.
type Cache struct {
	Enabled       bool          `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client
	MaxBatch  int     `yaml:"max_batch"`
}

// Watch configures the scheduled re-checker.
type Watch struct {
	Schedule string   `yaml:"schedule"`
	Domains  []string `yaml:"domains"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	rc := availability.DefaultRetryConfig()
	return &Config{
		Method:         availability.MethodHybrid,
		RateLimitDelay: time.Second,
		ChunkSize:      5,
		ChunkDelay:     100 * time.Millisecond,
		LogLevel:       "info",
		Retry: Retry{
			MaxRetries:   rc.MaxRetries,
			InitialDelay: rc.InitialDelay,
			Exponential:  rc.UseExponentialBackoff,
			MaxDelay:     rc.MaxDelay,
			Multiplier:   rc.BackoffMultiplier,
		},
		Cache: Cache{
			Enabled:     true,
			TTL:         5 * time.Minute,
			RedisPrefix: "availability:",
		},
		Server: Server{
			Addr:      ":8080",
			RateLimit: 20,
			MaxBatch:  100,
		},
		Watch: Watch{
			Schedule: "@every 1h",
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()

		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML from r. Unknown keys are rejected.
func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Method = availability.CheckMethod(strings.ToLower(getEnv(EnvPrefix+"METHOD", string(c.Method))))
	c.LogLevel = getEnv(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.Resolvers = getEnvList(EnvPrefix+"RESOLVERS", c.Resolvers)
	c.TLDs = getEnvList(EnvPrefix+"TLDS", c.TLDs)
	c.Cache.Enabled = getEnvBool(EnvPrefix+"CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.RedisAddr = getEnv(EnvPrefix+"REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv(EnvPrefix+"REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Server.Addr = getEnv(EnvPrefix+"SERVER_ADDR", c.Server.Addr)
	c.Watch.Schedule = getEnv(EnvPrefix+"WATCH_SCHEDULE", c.Watch.Schedule)
	c.Watch.Domains = getEnvList(EnvPrefix+"WATCH_DOMAINS", c.Watch.Domains)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TIMEOUT", &c.Timeout},
		{"RATE_LIMIT_DELAY", &c.RateLimitDelay},
		{"CHUNK_DELAY", &c.ChunkDelay},
		{"CACHE_TTL", &c.Cache.TTL},
	}
	for _, d := range durations {
		v, err := getEnvDuration(EnvPrefix+d.key, *d.dst)
		if err != nil {
			return err
		}
		*d.dst = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_RETRIES", &c.MaxRetries},
		{"CHUNK_SIZE", &c.ChunkSize},
		{"REDIS_DB", &c.Cache.RedisDB},
	}
	for _, n := range ints {
		v, err := getEnvInt(EnvPrefix+n.key, *n.dst)
		if err != nil {
			return err
		}
		*n.dst = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Method {
	case availability.MethodDNS, availability.MethodWHOIS, availability.MethodHybrid:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalid, c.Method)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalid, c.Timeout)
	}
	if c.MaxRetries < 0 || c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: negative retry count", ErrInvalid)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: negative chunk size %d", ErrInvalid, c.ChunkSize)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit %v", ErrInvalid, c.Server.RateLimit)
	}
	return nil
}

// RetryConfig converts the retry section.
func (c *Config) RetryConfig() availability.RetryConfig {
	return availability.RetryConfig{
		MaxRetries:            c.Retry.MaxRetries,
		InitialDelay:          c.Retry.InitialDelay,
		UseExponentialBackoff: c.Retry.Exponential,
		MaxDelay:              c.Retry.MaxDelay,
		BackoffMultiplier:     c.Retry.Multiplier,
	}
}

// Options converts the configuration into checker options. The result
// cache is left to the caller when Redis is configured.
func (c *Config) Options(logger *zap.Logger) []availability.Option {
	opts := []availability.Option{
		availability.WithMethod(c.Method),
		availability.WithMaxRetries(c.MaxRetries),
		availability.WithRetryConfig(c.RetryConfig()),
		availability.WithRateLimitDelay(c.RateLimitDelay),
		availability.WithChunkSize(c.ChunkSize),
		availability.WithChunkDelay(c.ChunkDelay),
		availability.WithCacheTTL(c.Cache.TTL),
	}
	if c.Timeout > 0 {
		opts = append(opts, availability.WithTimeout(c.Timeout))
	}
	if len(c.Resolvers) > 0 {
		opts = append(opts, availability.WithResolvers(c.Resolvers...))
	}
	if c.UnsupportedTLDs != nil {
		opts = append(opts, availability.WithUnsupportedTLDs(c.UnsupportedTLDs...))
	}
	if !c.Cache.Enabled {
		opts = append(opts, availability.WithCache(nil))
	}
	if logger != nil {
		opts = append(opts, availability.WithLogger(logger))
	}
	return opts
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return d, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return n, nil
}
