package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/marincop/internal/model"
)

// Cache stores validated oracle replies keyed by request fingerprint
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Clear() error
}

// CacheKey fingerprints the parts of an oracle request
func CacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "marincop:v1:" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg: memory only without a directory,
// memory in front of disk with one. A disabled cache is a no-op.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return NopCache{}
	}
	memTTL := time.Duration(cfg.MemoryTTL) * time.Minute
	if memTTL <= 0 {
		memTTL = 30 * time.Minute
	}
	memory := NewMemoryCache(memTTL, 10*time.Minute)
	if cfg.Dir == "" {
		return memory
	}
	diskTTL := time.Duration(cfg.DiskTTL) * time.Hour
	if diskTTL <= 0 {
		diskTTL = 24 * time.Hour
	}
	return &Layered{memory: memory, disk: NewDiskCache(cfg.Dir, diskTTL)}
}

// Layered checks memory before disk and promotes disk hits
type Layered struct {
	memory *MemoryCache
	disk   *DiskCache
}

// Get returns a reply from memory, or from disk and remembers it in memory
func (c *Layered) Get(key string) ([]byte, bool) {
	if val, ok := c.memory.Get(key); ok {
		return val, true
	}
	val, ok := c.disk.Get(key)
	if ok {
		_ = c.memory.Set(key, val, 0)
	}
	return val, ok
}

// Set writes through to both layers
func (c *Layered) Set(key string, value []byte, ttl time.Duration) error {
	_ = c.memory.Set(key, value, ttl)
	return c.disk.Set(key, value, ttl)
}

// Clear drops every stored reply
func (c *Layered) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(string) ([]byte, bool)               { return nil, false }
func (NopCache) Set(string, []byte, time.Duration) error { return nil }
func (NopCache) Clear() error                            { return nil }
