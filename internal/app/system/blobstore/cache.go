// internal/app/system/blobstore/cache.go
package blobstore

import (
	"sync"
	"time"
)

// cacheEarlyExpiry is subtracted from the real TTL so a cached link is
// never handed out moments before it stops working.
const cacheEarlyExpiry = time.Minute

const cachePurgeThreshold = 256

type cachedURL struct {
	url       string
	expiresAt time.Time
}

// urlCache memoizes signed URLs per object key. Entries expire one minute
// before the underlying link does.
type urlCache struct {
	mu      sync.Mutex
	entries map[string]cachedURL
	now     func() time.Time
}

func newURLCache() *urlCache {
	return &urlCache{
		entries: make(map[string]cachedURL),
		now:     time.Now,
	}
}

func (c *urlCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.url, true
}

func (c *urlCache) put(key, url string, ttl time.Duration) {
	expiry := ttl - cacheEarlyExpiry
	if expiry <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= cachePurgeThreshold {
		c.purgeLocked()
	}
	c.entries[key] = cachedURL{url: url, expiresAt: c.now().Add(expiry)}
}

func (c *urlCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *urlCache) purgeLocked() {
	now := c.now()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
}
