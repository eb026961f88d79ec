// Package cache provides a small time-boxed memoization cache.
//
// Entries are stored with the time they were written and are considered
// stale once the configured TTL has elapsed. Expiry is checked lazily on
// lookup; there is no background sweeper.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the memoization window of the interactive tool
const DefaultTTL = 3200 * time.Second

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache maps keys to values that expire after a fixed TTL
type Cache[K comparable, V any] struct {
	ttl     time.Duration
	entries map[K]entry[V]
	now     func() time.Time
	mu      sync.Mutex
}

// New creates a cache whose entries expire after ttl. A non-positive ttl
// falls back to DefaultTTL.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *Cache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL returns the expiry window
func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if present and not expired
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its expiry
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// GetOrLoad returns the cached value for key or calls load and caches its
// result. Errors from load are returned as-is and never cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := load()
	if err != nil {
		return v, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

// Len returns the number of stored entries, including expired ones not yet
// evicted
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge removes every entry
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}
