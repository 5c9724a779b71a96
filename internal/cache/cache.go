// Package cache provides a keyed, time-to-live cache with request
// de-duplication for provider responses.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value   V
	fetched time.Time
}

// Cache holds values of type V keyed by string. Values older than the TTL are
// stale and refetched on the next Fetch. Concurrent fetches of one key share a
// single call. Errors are never cached.
type Cache[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry[V]
	epoch   uint64
}

// New creates a cache whose entries expire after ttl. A non-positive ttl
// disables expiry.
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Fetch returns the cached value for key, calling fn to load it when missing
// or stale. A value loaded across an Invalidate or Purge is returned to the
// caller but not stored.
func (c *Cache[V]) Fetch(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()

		v, err := fn(ctx)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.epoch == epoch {
			c.entries[key] = entry[V]{value: v, fetched: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Set stores value for key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, fetched: c.now()}
}

// Invalidate drops key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.epoch++
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.epoch++
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) expired(e entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.fetched) >= c.ttl
}
