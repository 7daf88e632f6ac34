package resilience

import (
	"context"
	"time"

	"github.com/deckmeta/go-data/errs"
)

// RetryConfig defines configuration for retry logic
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int

	// Delay is the fixed wait between attempts. The failure modes this
	// layer handles are load-balancer blips, not server overload, so the
	// delay does not grow between attempts.
	Delay time.Duration

	// RetryableErrors is a function that determines if an error is retryable
	RetryableErrors func(error) bool
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		Delay:           time.Second,
		RetryableErrors: DefaultRetryableErrors,
	}
}

// DefaultRetryableErrors determines if an error is retryable by default.
// A resource the server reports as not found will not exist on the next
// attempt either, so API errors are never retried.
func DefaultRetryableErrors(err error) bool {
	if err == nil {
		return false
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return false
	}
	return !errs.Is(err, errs.API)
}

// RetryableFunc is a function that can be retried
type RetryableFunc func() error

// Retry executes fn up to config.MaxAttempts times with a fixed delay
// between attempts. A non-retryable error fails immediately. When all
// attempts are exhausted the last error is returned, annotated with the
// attempt count but otherwise unchanged.
func Retry(ctx context.Context, config RetryConfig, fn RetryableFunc) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.RetryableErrors != nil && !config.RetryableErrors(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(config.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errs.WithAttempts(lastErr, attempts)
}
