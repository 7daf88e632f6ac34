package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// inflight is a one-producer/many-consumer latch. The first caller to miss
// closes done after filling val/err; joined callers block on done and read
// the identical outcome.
type inflight struct {
	done chan struct{}
	val  any
	err  error
}

func newInflight() *inflight {
	return &inflight{done: make(chan struct{})}
}

func (f *inflight) settle(val any, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// entry is either resolved (pending == nil) or pending. The expiry on a
// pending entry bounds how long it counts as the current attempt, so a
// wedged attempt is reclaimable by a later caller even before it settles.
type entry struct {
	value   any
	expires time.Time
	pending *inflight
}

// live reports whether the entry still counts: a resolved entry until its
// value expires, a pending entry until its attempt window expires.
func (e *entry) live(now time.Time) bool {
	return now.Before(e.expires)
}

type inMemoryCache struct {
	mutex sync.Mutex
	cache map[Key]*entry
	cfg   config
}

var _ Cache = (*inMemoryCache)(nil)

// NewInMemory returns a new in-memory Cache implementation. The instance is
// meant to be constructed once at application start and injected into every
// data-access function; there is no package-level singleton.
func NewInMemory(opts ...Option) Cache {
	return &inMemoryCache{
		cache: make(map[Key]*entry),
		cfg:   applyOptions(opts),
	}
}

func (c *inMemoryCache) Get(key Key) (bool, any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e, ok := c.cache[key]
	if !ok || e.pending != nil {
		return false, nil
	}
	if !time.Now().Before(e.expires) {
		delete(c.cache, key)
		return false, nil
	}
	return true, e.value
}

func (c *inMemoryCache) Set(key Key, val any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.defaultTTL
	}
	c.mutex.Lock()
	c.cache[key] = &entry{value: val, expires: time.Now().Add(ttl)}
	c.prune()
	c.mutex.Unlock()
}

func (c *inMemoryCache) Expire(key Key) bool {
	c.mutex.Lock()
	_, ok := c.cache[key]
	if ok {
		delete(c.cache, key)
	}
	c.mutex.Unlock()
	return ok
}

func (c *inMemoryCache) Clear() {
	c.mutex.Lock()
	c.cache = make(map[Key]*entry)
	c.mutex.Unlock()
}

func (c *inMemoryCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.cache)
}

func (c *inMemoryCache) GetOrCreate(ctx context.Context, key Key, ttl time.Duration, producer Producer) (any, error) {
	if ttl <= 0 {
		ttl = c.cfg.defaultTTL
	}
	now := time.Now()

	c.mutex.Lock()
	if e, ok := c.cache[key]; ok && e.live(now) {
		if e.pending == nil {
			val := e.value
			c.mutex.Unlock()
			return val, nil
		}
		// Join the attempt already in flight. Its settlement is shared, so
		// every joined caller observes the first caller's outcome.
		flight := e.pending
		c.mutex.Unlock()
		<-flight.done
		return flight.val, flight.err
	}

	// Miss. Install the pending entry before the producer runs so callers
	// arriving in the meantime join instead of fetching again.
	flight := newInflight()
	c.cache[key] = &entry{pending: flight, expires: now.Add(ttl)}
	c.mutex.Unlock()

	val, err := producer(ctx)

	c.mutex.Lock()
	current, ok := c.cache[key]
	// Identity check: only settle the entry this call installed. A stale
	// attempt must not clobber an entry installed after a Clear or Expire.
	mine := ok && current.pending == flight
	if err != nil {
		if mine {
			delete(c.cache, key)
		}
	} else if mine {
		c.cache[key] = &entry{value: val, expires: time.Now().Add(ttl)}
		c.prune()
	}
	c.mutex.Unlock()

	flight.settle(val, err)
	return val, err
}

// prune enforces the size bound. Caller must hold the mutex. Runs only once
// the cleanup threshold is crossed; first drops expired resolved entries,
// then drops resolved entries in ascending expiry order until the cache fits
// in maxEntries. Pending entries are never removed out from under a caller.
func (c *inMemoryCache) prune() {
	if len(c.cache) <= c.cfg.cleanupThreshold {
		return
	}
	now := time.Now()
	for key, e := range c.cache {
		if e.pending == nil && !now.Before(e.expires) {
			delete(c.cache, key)
		}
	}
	if len(c.cache) <= c.cfg.maxEntries {
		return
	}
	type victim struct {
		key     Key
		expires time.Time
	}
	victims := make([]victim, 0, len(c.cache))
	for key, e := range c.cache {
		if e.pending == nil {
			victims = append(victims, victim{key, e.expires})
		}
	}
	sort.Slice(victims, func(i, j int) bool {
		return victims[i].expires.Before(victims[j].expires)
	})
	for _, v := range victims {
		if len(c.cache) <= c.cfg.maxEntries {
			break
		}
		delete(c.cache, v.key)
	}
}
