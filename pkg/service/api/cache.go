package api

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the max age for cached REST responses.
const DefaultCacheTTL = 5 * time.Minute

// cacheEntry holds a raw response body with its fetch time.
type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// responseCache memoizes GET responses by request key. Entries older than
// the TTL are treated as absent; they are not deleted eagerly. The cache is
// a latency optimization only and is never consulted for writes.
type responseCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached body for key if it is younger than the TTL.
// An expired hit is indistinguishable from a miss.
func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.body, true
}

// getStale returns the cached body for key regardless of age. Used only as a
// fallback when the transport fails and nothing fresher exists.
func (c *responseCache) getStale(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.body, true
}

func (c *responseCache) put(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{body: body, fetchedAt: time.Now()}
}
