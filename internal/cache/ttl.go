// Package cache provides a single-entry, time-bounded read-through cache.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the freshness window for the public game listing.
const DefaultTTL = 5 * time.Minute

// TTL holds one value for a fixed freshness window. Get returns the stored
// value itself, so callers must treat it as read-only.
type TTL[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	value   T
	storeAt time.Time
	filled  bool
}

// New creates an empty cache. A nil clock uses time.Now.
func New[T any](ttl time.Duration, now func() time.Time) *TTL[T] {
	if now == nil {
		now = time.Now
	}
	return &TTL[T]{ttl: ttl, now: now}
}

// Get returns the cached value while it is fresh.
func (c *TTL[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.filled || c.now().Sub(c.storeAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set stores v and restarts the freshness window.
func (c *TTL[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.storeAt = c.now()
	c.filled = true
}

// Invalidate drops the cached value.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.filled = false
}

// Age reports how long ago the value was stored; ok is false when empty.
func (c *TTL[T]) Age() (age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.filled {
		return 0, false
	}
	return c.now().Sub(c.storeAt), true
}
