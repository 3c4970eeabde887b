package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps replies for the life of the process, so a batch that
// repeats a notification asks the oracle once
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache; expired items are swept every cleanup
func NewMemoryCache(ttl, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(ttl, cleanup)}
}

// Get returns a stored reply
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	reply, ok := val.([]byte)
	return reply, ok
}

// Set stores a reply; ttl 0 uses the cache default
func (c *MemoryCache) Set(key string, reply []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, reply, ttl)
	return nil
}

// Clear drops every reply
func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len is the number of unexpired replies
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
