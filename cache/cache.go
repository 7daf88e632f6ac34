package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/deckmeta/go-data/errs"
)

// Key identifies one logical resource request. Equal requests must map to
// equal keys and distinct requests to distinct keys; beyond that the cache
// treats it as opaque.
type Key string

// Producer performs the underlying fetch on a cache miss. Exactly one
// producer runs per key at a time; concurrent callers for the same key share
// its outcome.
type Producer func(ctx context.Context) (any, error)

type Cache interface {
	// Get retrieves a resolved value. Expired entries are treated as a miss
	// and deleted on read.
	Get(key Key) (bool, any)

	// GetOrCreate is the primary entry point. On a hit it returns the cached
	// value without invoking producer. If an attempt for the key is already
	// in flight, the caller joins it and observes the same outcome. On a
	// miss the producer runs; success stores the value for ttl, failure
	// removes the entry so the next caller gets a fresh attempt.
	GetOrCreate(ctx context.Context, key Key, ttl time.Duration, producer Producer) (any, error)

	// Set stores a resolved value directly. If ttl <= 0, the cache's
	// configured default TTL is used.
	Set(key Key, val any, ttl time.Duration)

	// Expire removes a key from the cache, reporting whether it was present.
	// In-flight attempts are not cancelled; their settlement is discarded.
	Expire(key Key) bool

	// Clear removes all entries unconditionally.
	Clear()

	// Len reports the number of entries, counting in-flight ones.
	Len() int
}

// DefaultTTL is the default TTL used when Set or GetOrCreate is given a
// non-positive ttl.
const DefaultTTL = 5 * time.Minute

const (
	// DefaultMaxEntries is the size the cache is pruned back down to.
	DefaultMaxEntries = 200
	// DefaultCleanupThreshold is the size at which a successful write
	// triggers a pruning pass. Keeping it above DefaultMaxEntries amortizes
	// eviction cost across writes.
	DefaultCleanupThreshold = 250
)

// config holds the resolved configuration for a cache implementation.
type config struct {
	defaultTTL       time.Duration
	maxEntries       int
	cleanupThreshold int
}

// Option configures a Cache implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultTTL:       DefaultTTL,
		maxEntries:       DefaultMaxEntries,
		cleanupThreshold: DefaultCleanupThreshold,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cleanupThreshold < cfg.maxEntries {
		cfg.cleanupThreshold = cfg.maxEntries
	}
	return cfg
}

// WithDefaultTTL sets the TTL used when a write does not specify one.
// Defaults to DefaultTTL (5 minutes).
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) { c.defaultTTL = d }
}

// WithMaxEntries sets the size the cache is pruned back down to.
func WithMaxEntries(n int) Option {
	return func(c *config) { c.maxEntries = n }
}

// WithCleanupThreshold sets the size at which a write triggers pruning.
// Values below max entries are raised to it.
func WithCleanupThreshold(n int) Option {
	return func(c *config) { c.cleanupThreshold = n }
}

// GetAs retrieves a typed value from the cache via a direct type assertion.
func GetAs[T any](c Cache, key Key) (bool, T) {
	found, val := c.Get(key)
	if !found {
		var zero T
		return false, zero
	}
	typed, ok := val.(T)
	if !ok {
		var zero T
		return false, zero
	}
	return true, typed
}

// Fetch is the typed form of GetOrCreate. The producer's result must be of
// type T; a cached value of any other type fails with a DataFormat error
// rather than a panic.
func Fetch[T any](ctx context.Context, c Cache, key Key, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	val, err := c.GetOrCreate(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		var zero T
		return zero, errs.New(errs.DataFormat,
			fmt.Sprintf("cached value for %q has type %T", key, val),
			errs.Context{})
	}
	return typed, nil
}
