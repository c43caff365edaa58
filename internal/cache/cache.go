// Package cache is an explicit, injected key-value store with TTL semantics
// and pattern-based invalidation. Callers that want caching receive one;
// nothing in the engine reaches for a process-wide singleton.
package cache

import (
	"path"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a bounded in-memory cache. Expired entries are dropped lazily
// on access and swept when the cache is full.
type TTLCache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]entry
}

// New constructs a cache with a default TTL and entry bound.
func New(ttl time.Duration, maxEntries int) *TTLCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &TTLCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
	}
}

// Get returns the cached value and whether it is present and fresh.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value under the default TTL.
func (c *TTLCache) Set(key string, value any) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores a value with an explicit TTL.
func (c *TTLCache) SetTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxEntries {
			c.sweepLocked()
		}
		if len(c.entries) >= c.maxEntries {
			return
		}
	}
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes one key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Invalidate removes every key matching the glob pattern (path.Match syntax)
// and returns how many entries were dropped.
func (c *TTLCache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for key := range c.entries {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of stored entries, including any not yet swept.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTLCache) sweepLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
