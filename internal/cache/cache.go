// Package cache provides the short-TTL in-memory result cache shared across
// requests within one process lifetime. Entries are evicted lazily on read
// when expired; concurrent identical misses are collapsed so only one
// aggregation runs per key.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry pairs a stored value with its expiry. A zero expireAt never expires.
type entry struct {
	value    interface{}
	expireAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// Cache is a TTL memoization map with a bounded entry count.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	group      singleflight.Group
	now        func() time.Time
}

// New creates a cache holding at most maxEntries entries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Key builds a deterministic cache key from the normalized request shape.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Get returns the stored value for key, treating an expired entry as absent
// and removing it.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A ttl of zero means the entry never expires.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expireAt time.Time
	if ttl > 0 {
		expireAt = c.now().Add(ttl)
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry{value: value, expireAt: expireAt}
}

// Do returns the cached value for key, or runs fn exactly once to compute
// it, storing the result with ttl. Concurrent callers with the same key
// during a miss share a single computation. The second return reports
// whether the value came from the cache.
func (c *Cache) Do(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Re-check: another caller may have finished between Get and Do
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, shared, nil
}

// Len returns the number of stored entries, including not-yet-evicted
// expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// evictLocked makes room for one entry: expired entries go first, then the
// entry closest to expiry. Never-expiring entries are evicted only when
// everything else is gone.
func (c *Cache) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var victim string
	var victimExpiry time.Time
	first := true
	for k, e := range c.entries {
		if e.expireAt.IsZero() {
			continue
		}
		if first || e.expireAt.Before(victimExpiry) {
			victim, victimExpiry, first = k, e.expireAt, false
		}
	}
	if first {
		// Only never-expiring entries remain; drop an arbitrary one
		for k := range c.entries {
			victim = k
			break
		}
	}
	delete(c.entries, victim)
}
