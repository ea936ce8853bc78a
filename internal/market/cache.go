package market

import (
	"sync"
	"time"
)

// NewsCache is a single-entry TTL cache for the news proxy. It is injected
// into the client rather than living as package state so tests can reset
// it and control the clock.
type NewsCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	value    *NewsResponse
	storedAt time.Time
	now      func() time.Time
}

// NewNewsCache creates a cache with the given time-to-live.
func NewNewsCache(ttl time.Duration) *NewsCache {
	return &NewsCache{ttl: ttl, now: time.Now}
}

// Get returns the cached response if it is still fresh.
func (c *NewsCache) Get() (*NewsResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil || c.now().Sub(c.storedAt) >= c.ttl {
		return nil, false
	}
	return c.value, true
}

// GetStale returns whatever is cached regardless of age. Used to keep
// serving headlines when the upstream rate-limits us.
func (c *NewsCache) GetStale() (*NewsResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil {
		return nil, false
	}
	return c.value, true
}

// Set stores a response and stamps it with the current time.
func (c *NewsCache) Set(value *NewsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.storedAt = c.now()
}

// Clear empties the cache so the next Get misses.
func (c *NewsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.storedAt = time.Time{}
}
