package radio

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// entry is the cache state of one key. Its mutex is the per-key lock: it
// serializes transitions for that key only.
type entry[T any] struct {
	mu       sync.Mutex
	attempts int
	items    []T      // nil until a fetch succeeds
	pending  *call[T] // fetch in flight, shared by every caller
}

// call is one upstream fetch. items is only read after done is closed.
type call[T any] struct {
	done  chan struct{}
	items []T
}

// hasNoData is the negative-cache signal: retries are exhausted without a
// result, or the upstream answered with an empty listing.
func hasNoData[T any](attempts int, items []T, maxAttempts int) bool {
	if items == nil {
		return attempts >= maxAttempts
	}
	return len(items) == 0
}

// fetchFunc loads the items of one key from upstream.
type fetchFunc[T any] func(ctx context.Context) ([]T, error)

// CacheStats counts cache entries by state.
type CacheStats struct {
	Keys     int // keys ever requested
	Loaded   int // keys holding a non-empty listing
	Dead     int // keys in the negative cache
	InFlight int // keys with a fetch running
}

// retryCache is a coalescing, retry-bounded cache. Entries, and with them
// the per-key locks, are created lazily and never removed.
type retryCache[K comparable, T any] struct {
	maxAttempts int
	logger      zerolog.Logger

	mu      sync.RWMutex
	entries map[K]*entry[T]
}

func newRetryCache[K comparable, T any](maxAttempts int, logger zerolog.Logger) *retryCache[K, T] {
	return &retryCache[K, T]{
		maxAttempts: max(maxAttempts, 1),
		logger:      logger,
		entries:     make(map[K]*entry[T]),
	}
}

// entry returns the entry for key, creating it on first use.
func (c *retryCache[K, T]) entry(key K) *entry[T] {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e
	}
	e = &entry[T]{}
	c.entries[key] = e
	return e
}

// get returns the items of key, fetching them when the entry has neither
// items nor a dead-end verdict. Concurrent callers share one fetch. A failed
// fetch yields no items and counts as one attempt. The only error is the
// caller's own context ending while it waits; the fetch keeps running for
// the other callers.
func (c *retryCache[K, T]) get(ctx context.Context, key K, fetch fetchFunc[T]) ([]T, error) {
	e := c.entry(key)

	e.mu.Lock()
	switch {
	case e.pending != nil:
	case e.items != nil:
		items := e.items
		e.mu.Unlock()
		return items, nil
	case hasNoData(e.attempts, e.items, c.maxAttempts):
		e.mu.Unlock()
		return nil, nil
	default:
		e.attempts++
		e.pending = &call[T]{done: make(chan struct{})}
		go c.run(context.WithoutCancel(ctx), key, e, e.pending, e.attempts, fetch)
	}
	cl := e.pending
	e.mu.Unlock()

	select {
	case <-cl.done:
		return cl.items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *retryCache[K, T]) run(ctx context.Context, key K, e *entry[T], cl *call[T], attempt int, fetch fetchFunc[T]) {
	items, err := safeFetch(ctx, fetch)

	e.mu.Lock()
	if err != nil {
		items = nil
		c.logger.Warn().
			Err(err).
			Str("key", fmt.Sprint(key)).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Msg("fetch failed")
	} else {
		if items == nil {
			items = []T{}
		}
		e.items = items
	}
	e.pending = nil
	cl.items = items
	close(cl.done)
	e.mu.Unlock()
}

func safeFetch[T any](ctx context.Context, fetch fetchFunc[T]) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

// dead reports whether key is in the negative cache. Unknown keys are not.
func (c *retryCache[K, T]) dead(key K) bool {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending == nil && hasNoData(e.attempts, e.items, c.maxAttempts)
}

func (c *retryCache[K, T]) stats() CacheStats {
	c.mu.RLock()
	entries := make([]*entry[T], 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	s := CacheStats{Keys: len(entries)}
	for _, e := range entries {
		e.mu.Lock()
		switch {
		case e.pending != nil:
			s.InFlight++
		case hasNoData(e.attempts, e.items, c.maxAttempts):
			s.Dead++
		case e.items != nil:
			s.Loaded++
		}
		e.mu.Unlock()
	}
	return s
}
