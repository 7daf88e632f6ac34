package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckmeta/go-data/errs"
)

func TestSetGetExpire(t *testing.T) {
	c := NewInMemory()
	found, val := c.Get("test")
	assert.False(t, found)
	assert.Nil(t, val)

	c.Set("test", "value", time.Millisecond*20)
	found, val = c.Get("test")
	assert.True(t, found)
	assert.Equal(t, "value", val)

	time.Sleep(time.Millisecond * 25)
	found, val = c.Get("test")
	assert.False(t, found)
	assert.Nil(t, val)
	// expired entry was deleted on read, not just hidden
	assert.Equal(t, 0, c.Len())
}

func TestExpireAndClear(t *testing.T) {
	c := NewInMemory()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	assert.True(t, c.Expire("a"))
	assert.False(t, c.Expire("a"))
	assert.Equal(t, 1, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrCreateHitSuppressesProducer(t *testing.T) {
	c := NewInMemory()
	var calls int32
	producer := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	val, err := c.GetOrCreate(context.Background(), "k", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	val, err = c.GetOrCreate(context.Background(), "k", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, "value", val)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrCreateExpiryTriggersRefetch(t *testing.T) {
	c := NewInMemory()
	var calls int32
	producer := func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	val, err := c.GetOrCreate(context.Background(), "k", time.Millisecond*20, producer)
	require.NoError(t, err)
	assert.Equal(t, int32(1), val)

	time.Sleep(time.Millisecond * 25)
	val, err = c.GetOrCreate(context.Background(), "k", time.Millisecond*20, producer)
	require.NoError(t, err)
	assert.Equal(t, int32(2), val)
}

func TestGetOrCreateCoalescing(t *testing.T) {
	c := NewInMemory()
	var calls int32
	release := make(chan struct{})
	producer := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const n = 25
	var wg sync.WaitGroup
	results := make([]any, n)
	errors := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errors[i] = c.GetOrCreate(context.Background(), "k", time.Minute, producer)
		}(i)
	}

	// give every caller time to join the in-flight attempt
	time.Sleep(time.Millisecond * 50)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < n; i++ {
		require.NoError(t, errors[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestGetOrCreateFailureDoesNotPoison(t *testing.T) {
	c := NewInMemory()
	var calls int32
	producer := func(ctx context.Context) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errs.New(errs.Network, "boom", errs.Context{})
		}
		return "ok", nil
	}

	_, err := c.GetOrCreate(context.Background(), "k", time.Minute, producer)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Network))
	// the failed attempt left nothing behind
	assert.Equal(t, 0, c.Len())

	val, err := c.GetOrCreate(context.Background(), "k", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrCreateFailureSharedByJoinedCallers(t *testing.T) {
	c := NewInMemory()
	release := make(chan struct{})
	producer := func(ctx context.Context) (any, error) {
		<-release
		return nil, errs.New(errs.Timeout, "slow", errs.Context{})
	}

	const n = 5
	var wg sync.WaitGroup
	errors := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errors[i] = c.GetOrCreate(context.Background(), "k", time.Minute, producer)
		}(i)
	}
	time.Sleep(time.Millisecond * 50)
	close(release)
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.True(t, errs.Is(errors[i], errs.Timeout))
	}
}

func TestStaleFailureDoesNotClobberNewerEntry(t *testing.T) {
	c := NewInMemory()
	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return nil, errs.New(errs.Network, "late failure", errs.Context{})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.GetOrCreate(context.Background(), "k", time.Minute, slow)
	}()
	<-started

	// caller clears mid-flight, then a fresh attempt succeeds
	c.Clear()
	val, err := c.GetOrCreate(context.Background(), "k", time.Minute, func(ctx context.Context) (any, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", val)

	// the slow attempt settles with a failure, but it must not remove the
	// newer entry stored under the same key
	close(release)
	<-done
	found, val := c.Get("k")
	assert.True(t, found)
	assert.Equal(t, "fresh", val)
}

func TestPruneBound(t *testing.T) {
	c := NewInMemory(WithMaxEntries(10), WithCleanupThreshold(15))
	for i := 0; i < 15; i++ {
		c.Set(Key(fmt.Sprintf("k%d", i)), i, time.Minute)
	}
	// threshold not crossed yet, no pruning
	assert.Equal(t, 15, c.Len())

	c.Set("k15", 15, time.Minute)
	assert.LessOrEqual(t, c.Len(), 10)
}

func TestPruneRemovesExpiredFirst(t *testing.T) {
	c := NewInMemory(WithMaxEntries(10), WithCleanupThreshold(12))
	for i := 0; i < 6; i++ {
		c.Set(Key(fmt.Sprintf("stale%d", i)), i, time.Millisecond)
	}
	time.Sleep(time.Millisecond * 5)
	for i := 0; i < 6; i++ {
		c.Set(Key(fmt.Sprintf("fresh%d", i)), i, time.Minute)
	}
	// crossing the threshold drops only the expired entries
	c.Set("trigger", true, time.Minute)
	assert.Equal(t, 7, c.Len())
	found, _ := c.Get("fresh0")
	assert.True(t, found)
}

func TestPruneEvictsSoonestExpiringFirst(t *testing.T) {
	c := NewInMemory(WithMaxEntries(2), WithCleanupThreshold(3))
	c.Set("short", 1, time.Minute)
	c.Set("medium", 2, time.Hour)
	c.Set("long", 3, 24*time.Hour)
	c.Set("longest", 4, 48*time.Hour)

	assert.Equal(t, 2, c.Len())
	found, _ := c.Get("longest")
	assert.True(t, found)
	found, _ = c.Get("short")
	assert.False(t, found)
}

func TestPruneNeverRemovesPending(t *testing.T) {
	c := NewInMemory(WithMaxEntries(2), WithCleanupThreshold(2))
	release := make(chan struct{})
	started := make(chan struct{})
	go c.GetOrCreate(context.Background(), "inflight", time.Minute, func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "done", nil
	})
	<-started

	for i := 0; i < 6; i++ {
		c.Set(Key(fmt.Sprintf("k%d", i)), i, time.Minute)
	}

	// the pending entry survived every pruning pass
	impl := c.(*inMemoryCache)
	impl.mutex.Lock()
	e, ok := impl.cache["inflight"]
	impl.mutex.Unlock()
	require.True(t, ok)
	assert.NotNil(t, e.pending)

	close(release)
}

func TestFetchTyped(t *testing.T) {
	c := NewInMemory()
	val, err := Fetch(context.Background(), c, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	// same key now holds an int; asking for a string is a DataFormat error
	_, err = Fetch(context.Background(), c, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "nope", nil
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.DataFormat))
}

func TestGetAs(t *testing.T) {
	c := NewInMemory()
	c.Set("k", "value", time.Minute)
	found, s := GetAs[string](c, "k")
	assert.True(t, found)
	assert.Equal(t, "value", s)
	found, _ = GetAs[int](c, "k")
	assert.False(t, found)
}
