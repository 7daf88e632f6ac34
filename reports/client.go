// Package reports exposes the data-access functions the application calls.
// Every network read funnels through one injected cache instance, so
// concurrent readers of the same resource share a single fetch.
package reports

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/deckmeta/go-data/cache"
	"github.com/deckmeta/go-data/config"
	"github.com/deckmeta/go-data/fetch"
	"github.com/deckmeta/go-data/logger"
)

// Options tunes one fetch call. The zero value means: use the cache, derive
// the key from the URL, default TTL.
type Options struct {
	// NoCache bypasses the cache entirely for this call.
	NoCache bool
	// Key overrides the derived cache key.
	Key cache.Key
	// TTL overrides the default TTL for the entry this call resolves.
	TTL time.Duration
}

type Client struct {
	fetcher *fetch.Client
	cache   cache.Cache
	baseURL string
	ttl     time.Duration
	logger  logger.Logger
}

// NewClient wires the fetch pipeline to the injected cache. The cache
// instance is constructed once at application start and shared by every
// data-access function.
func NewClient(cfg *config.Config, fetcher *fetch.Client, c cache.Cache, log logger.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		cache:   c,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ttl:     time.Duration(cfg.JSONCacheTTLMS) * time.Millisecond,
		logger:  log.WithPrefix("reports"),
	}
}

// ClearCache drops every cached resource, e.g. when switching data context.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

func (c *Client) resourceURL(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func first(opts []Options) Options {
	if len(opts) > 0 {
		return opts[0]
	}
	return Options{}
}

// getJSON fetches one resource through the cache. Cache misses run the full
// transport+decode+retry pipeline; failures never leave an entry behind.
func (c *Client) getJSON(ctx context.Context, resourceURL string, opts Options) (any, error) {
	if opts.NoCache {
		return c.fetcher.FetchJSON(ctx, resourceURL)
	}
	key := opts.Key
	if key == "" {
		key = cache.NewKey(resourceURL)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.cache.GetOrCreate(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return c.fetcher.FetchJSON(ctx, resourceURL)
	})
}

// Tournaments returns the published tournament names, newest first.
func (c *Client) Tournaments(ctx context.Context, opts ...Options) ([]string, error) {
	u := c.resourceURL("tournaments.json")
	val, err := c.getJSON(ctx, u, first(opts))
	if err != nil {
		return nil, err
	}
	return shape[[]string](val, u)
}

// Master returns one tournament's card-usage report.
func (c *Client) Master(ctx context.Context, tournament string, opts ...Options) (*Master, error) {
	u := c.resourceURL(tournament, "master.json")
	val, err := c.getJSON(ctx, u, first(opts))
	if err != nil {
		return nil, err
	}
	m, err := shape[Master](val, u)
	if err != nil {
		return nil, err
	}
	if err := m.validate(u); err != nil {
		return nil, err
	}
	return &m, nil
}

// Decks returns one tournament's published deck lists, best rank first.
func (c *Client) Decks(ctx context.Context, tournament string, opts ...Options) ([]Deck, error) {
	u := c.resourceURL(tournament, "decks.json")
	val, err := c.getJSON(ctx, u, first(opts))
	if err != nil {
		return nil, err
	}
	return shape[[]Deck](val, u)
}

// Suggestions returns the curated suggestion feed.
func (c *Client) Suggestions(ctx context.Context, opts ...Options) (*Suggestions, error) {
	u := c.resourceURL("suggestions.json")
	val, err := c.getJSON(ctx, u, first(opts))
	if err != nil {
		return nil, err
	}
	s, err := shape[Suggestions](val, u)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
