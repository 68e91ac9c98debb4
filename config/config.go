// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ytscout/cache"
	"ytscout/internal/retry"
	"ytscout/recommend"
)

// Config holds all application configuration for ytscout flows.
type Config struct {
	// APIKey authorizes public-data YouTube API calls.
	APIKey string `json:"api_key"`
	// ClientSecretsFile is the OAuth client secrets JSON downloaded from
	// the Google Cloud console. Needed only for the subscriptions flow.
	ClientSecretsFile string `json:"client_secrets_file"`
	// TokenFile caches the OAuth token between runs.
	TokenFile string `json:"token_file"`

	// OutputDir is where artifacts (subscription lists, reports) are written.
	OutputDir string `json:"output_dir"`

	// RedisURL enables the shared cache tier when non-empty.
	RedisURL string `json:"redis_url"`
	// CacheTTL is how long cached metadata stays valid.
	CacheTTL time.Duration `json:"cache_ttl"`
	// CacheMaxEntries bounds the in-process cache tier.
	CacheMaxEntries int `json:"cache_max_entries"`

	// DailyQuota is the API unit budget for one day.
	DailyQuota int `json:"daily_quota"`
	// QuotaReserve is withheld from the budget for other tools sharing the key.
	QuotaReserve int `json:"quota_reserve"`
	// RequestsPerSecond paces API calls.
	RequestsPerSecond float64 `json:"requests_per_second"`

	// MaxRetries is the maximum number of retries for failed operations.
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries.
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries.
	MaxBackoff time.Duration `json:"max_backoff"`
	// BackoffMultiplier is the multiplier for exponential backoff (must be > 1).
	BackoffMultiplier float64 `json:"backoff_multiplier"`

	// LogLevel sets the global log level ("debug", "info", "warn", "error").
	LogLevel string `json:"log_level"`

	// Discover tunes the discovery flow.
	Discover recommend.Config `json:"discover"`
	// Recommend tunes the recommendation flow.
	Recommend recommend.Config `json:"recommend"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		ClientSecretsFile: "client_secret.json",
		TokenFile:         "token.json",
		OutputDir:         ".",
		CacheTTL:          12 * time.Hour,
		CacheMaxEntries:   4096,
		DailyQuota:        10000,
		QuotaReserve:      0,
		RequestsPerSecond: 5.0,
		MaxRetries:        3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		LogLevel:          "info",
		Discover:          recommend.DefaultDiscoverConfig(),
		Recommend:         recommend.DefaultRecommendConfig(),
	}
}

// Load loads configuration from a file and environment variables.
// Priority: env vars > config file > defaults. When path is empty the
// default locations are searched and a missing file is not an error;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else if err := cfg.loadFromKnownLocations(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromKnownLocations tries ytscout.json in the current directory,
// then under the user's config directory.
func (c *Config) loadFromKnownLocations() error {
	paths := []string{
		"ytscout.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytscout", "ytscout.json"),
	}

	for _, path := range paths {
		err := c.loadFile(path)
		if err == nil {
			return nil
		}
		if !os.IsNotExist(err) {
			return err
		}
	}

	return os.ErrNotExist
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTSCOUT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YTSCOUT_CLIENT_SECRETS"); v != "" {
		c.ClientSecretsFile = v
	}
	if v := os.Getenv("YTSCOUT_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	if v := os.Getenv("YTSCOUT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("YTSCOUT_REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("YTSCOUT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = d
		}
	}
	if v := os.Getenv("YTSCOUT_DAILY_QUOTA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DailyQuota = n
		}
	}
	if v := os.Getenv("YTSCOUT_QUOTA_RESERVE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QuotaReserve = n
		}
	}
	if v := os.Getenv("YTSCOUT_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("YTSCOUT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("YTSCOUT_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("YTSCOUT_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
	if v := os.Getenv("YTSCOUT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.DailyQuota <= 0 {
		return fmt.Errorf("daily_quota must be positive")
	}
	if c.QuotaReserve < 0 {
		return fmt.Errorf("quota_reserve must be non-negative")
	}
	if c.QuotaReserve >= c.DailyQuota {
		return fmt.Errorf("quota_reserve must be less than daily_quota")
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive")
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache_max_entries must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff <= 0 {
		return fmt.Errorf("max_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	if err := c.Discover.Validate(); err != nil {
		return fmt.Errorf("discover settings: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend settings: %w", err)
	}
	return nil
}

// RetryConfig projects the retry knobs onto the provider's retry policy.
func (c *Config) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = c.MaxRetries
	cfg.InitialBackoff = c.InitialBackoff
	cfg.MaxBackoff = c.MaxBackoff
	cfg.Multiplier = c.BackoffMultiplier
	return cfg
}

// CacheConfig projects the cache knobs onto the cache policy.
func (c *Config) CacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.RedisURL = c.RedisURL
	cfg.TTL = c.CacheTTL
	cfg.MaxEntries = c.CacheMaxEntries
	return cfg
}
