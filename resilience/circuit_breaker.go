package resilience

import (
	"sync"
	"time"

	"github.com/deckmeta/go-data/errs"
)

// BreakerState represents the state of a circuit breaker
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	case BreakerOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrBreakerOpen is returned when the breaker rejects a call without
// attempting it.
var ErrBreakerOpen = errs.New(errs.Network, "circuit breaker is open", errs.Context{})

// BreakerConfig defines configuration for the circuit breaker
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening
	MaxFailures int

	// CoolOff is how long to stay open before probing with a half-open call
	CoolOff time.Duration

	// SuccessThreshold is the number of consecutive half-open successes
	// needed to close again
	SuccessThreshold int
}

// DefaultBreakerConfig returns a default configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		CoolOff:          30 * time.Second,
		SuccessThreshold: 2,
	}
}

// Breaker implements the circuit breaker pattern. It refuses calls outright
// after too many consecutive failures, then probes with single calls once
// the cool-off elapses.
type Breaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	probing     bool
	lastFailure time.Time
}

// NewBreaker creates a new circuit breaker with the given configuration
func NewBreaker(config BreakerConfig) *Breaker {
	return &Breaker{config: config}
}

// Do runs fn under breaker accounting. When the breaker is open, fn is not
// invoked and ErrBreakerOpen is returned.
func (b *Breaker) Do(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if time.Since(b.lastFailure) >= b.config.CoolOff {
			b.state = BreakerHalfOpen
			b.successes = 0
			b.probing = true
			return nil
		}
		return ErrBreakerOpen
	default: // half-open: one probe at a time
		if b.probing {
			return ErrBreakerOpen
		}
		b.probing = true
		return nil
	}
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if err == nil {
		switch b.state {
		case BreakerClosed:
			b.failures = 0
		case BreakerHalfOpen:
			b.successes++
			if b.successes >= b.config.SuccessThreshold {
				b.state = BreakerClosed
				b.failures = 0
			}
		}
		return
	}
	b.failures++
	b.lastFailure = time.Now()
	if b.state == BreakerHalfOpen || b.failures >= b.config.MaxFailures {
		b.state = BreakerOpen
	}
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset manually closes the breaker and clears its counters
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
	b.successes = 0
	b.probing = false
}
