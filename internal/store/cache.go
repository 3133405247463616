package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheSize bounds the number of cached keys. The store only has a handful.
const cacheSize = 64

// readCache holds raw JSON documents keyed by storage key. Raw bytes are
// cached instead of decoded values so callers never share slices.
type readCache struct {
	lru *expirable.LRU[string, []byte]
}

func newReadCache(ttl time.Duration) *readCache {
	return &readCache{lru: expirable.NewLRU[string, []byte](cacheSize, nil, ttl)}
}

func (c *readCache) get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *readCache) put(key string, raw []byte) {
	c.lru.Add(key, raw)
}

func (c *readCache) remove(key string) {
	c.lru.Remove(key)
}

func (c *readCache) purge() {
	c.lru.Purge()
}
