package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements ports.Cache on a size-bounded LRU. maxTTL caps every
// entry; shorter per-entry TTLs given to Set expire lazily on Get.
type Cache struct {
	lru *expirable.LRU[string, cacheEntry]
	now func() time.Time
}

// NewCache creates a cache holding at most maxEntries values, each for at
// most maxTTL. Zero means unbounded for either.
func NewCache(maxEntries int, maxTTL time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, cacheEntry](maxEntries, nil, maxTTL),
		now: time.Now,
	}
}

// Get implements ports.Cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, domain.NewNotFoundError("cache entry", key)
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return nil, domain.NewNotFoundError("cache entry", key)
	}

	return e.value, nil
}

// Set implements ports.Cache. The least recently used entry is evicted
// when the cache is full.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.lru.Add(key, cacheEntry{value: value, expiresAt: expiresAt})

	return nil
}

// Delete implements ports.Cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
