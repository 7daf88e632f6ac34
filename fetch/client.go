// Package fetch is the retrying JSON transport under the data layer. One
// FetchJSON call is one logical read: a GET with a timeout, a content-type
// aware decode, and a fixed-delay retry loop around both.
package fetch

import (
	"context"

	"github.com/deckmeta/go-data/logger"
	"github.com/deckmeta/go-data/resilience"
)

type Client struct {
	transport *Transport
	retry     resilience.RetryConfig
	breaker   *resilience.Breaker
	logger    logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBreaker wraps every attempt in the given circuit breaker. Off by
// default.
func WithBreaker(b *resilience.Breaker) ClientOption {
	return func(c *Client) { c.breaker = b }
}

// NewClient creates a Client. retry.RetryableErrors defaults to the
// resilience package default, which refuses to retry not-found failures.
func NewClient(transport *Transport, retry resilience.RetryConfig, log logger.Logger, opts ...ClientOption) *Client {
	if retry.RetryableErrors == nil {
		retry.RetryableErrors = resilience.DefaultRetryableErrors
	}
	c := &Client{
		transport: transport,
		retry:     retry,
		logger:    log.WithPrefix("fetch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchJSON fetches url and returns the decoded JSON value. Transport and
// decode failures keep their taxonomy kind through the retry layer; on
// exhaustion the last failure is returned annotated with the attempt count.
func (c *Client) FetchJSON(ctx context.Context, url string) (any, error) {
	var val any
	attempt := func() error {
		resp, err := c.transport.get(ctx, url)
		if err != nil {
			return err
		}
		val, err = decode(resp, url)
		return err
	}
	run := attempt
	if c.breaker != nil {
		run = func() error { return c.breaker.Do(attempt) }
	}
	err := resilience.Retry(ctx, c.retry, func() error {
		if err := run(); err != nil {
			c.logger.Debug("fetch attempt failed: %s", err)
			return err
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("fetch failed: %s", err)
		return nil, err
	}
	return val, nil
}
