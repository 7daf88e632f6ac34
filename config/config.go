// Package config holds the numeric tuning knobs for the data layer. All
// values come from the environment; there is no config file format.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/deckmeta/go-data/errs"
)

// Config is the full configuration surface of the data layer.
type Config struct {
	// BaseURL is the root of the published report tree.
	BaseURL string `env:"DECKMETA_BASE_URL" envDefault:"https://deckmeta.app/reports"`

	// TimeoutMS bounds a single HTTP GET, in milliseconds.
	TimeoutMS int `env:"DECKMETA_TIMEOUT_MS" envDefault:"10000"`

	// RetryAttempts is the total number of attempts for one logical fetch,
	// including the first.
	RetryAttempts int `env:"DECKMETA_RETRY_ATTEMPTS" envDefault:"3"`

	// RetryDelayMS is the fixed delay between attempts, in milliseconds.
	RetryDelayMS int `env:"DECKMETA_RETRY_DELAY_MS" envDefault:"1000"`

	// JSONCacheTTLMS is the default TTL for cached JSON resources.
	JSONCacheTTLMS int `env:"DECKMETA_JSON_CACHE_TTL_MS" envDefault:"300000"`

	// CacheMaxEntries is the size the cache is pruned back down to.
	CacheMaxEntries int `env:"DECKMETA_CACHE_MAX_ENTRIES" envDefault:"200"`

	// CacheCleanupThreshold is the size at which a write triggers pruning.
	// Must be >= CacheMaxEntries; the gap amortizes eviction cost.
	CacheCleanupThreshold int `env:"DECKMETA_CACHE_CLEANUP_THRESHOLD" envDefault:"250"`
}

// Load parses the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errs.Wrap(err, errs.Validation, "parse env", errs.Context{})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the cache and retry layers cannot honor.
func (c *Config) Validate() error {
	if c.TimeoutMS <= 0 {
		return errs.New(errs.Validation, fmt.Sprintf("timeout must be positive, got %d", c.TimeoutMS), errs.Context{})
	}
	if c.RetryAttempts < 1 {
		return errs.New(errs.Validation, fmt.Sprintf("retry attempts must be at least 1, got %d", c.RetryAttempts), errs.Context{})
	}
	if c.RetryDelayMS < 0 {
		return errs.New(errs.Validation, fmt.Sprintf("retry delay must not be negative, got %d", c.RetryDelayMS), errs.Context{})
	}
	if c.CacheMaxEntries < 1 {
		return errs.New(errs.Validation, fmt.Sprintf("cache max entries must be at least 1, got %d", c.CacheMaxEntries), errs.Context{})
	}
	if c.CacheCleanupThreshold < c.CacheMaxEntries {
		return errs.New(errs.Validation,
			fmt.Sprintf("cleanup threshold (%d) must be >= max entries (%d)", c.CacheCleanupThreshold, c.CacheMaxEntries),
			errs.Context{})
	}
	return nil
}
