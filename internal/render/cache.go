package render

import (
	"sync"
	"time"
)

const (
	chartCacheTTL        = 60 * time.Second
	chartCacheMaxEntries = 256
)

// Chart image cache entry
type chartCacheEntry struct {
	createdAt time.Time
	image     []byte
}

// Cache keeps rendered PNGs for a short time so repeated requests for the
// same viewport skip the draw.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	entries map[string]chartCacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = chartCacheTTL
	}
	return &Cache{ttl: ttl, max: chartCacheMaxEntries, now: time.Now, entries: map[string]chartCacheEntry{}}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		if c.now().Before(entry.createdAt.Add(c.ttl)) {
			img := make([]byte, len(entry.image))
			copy(img, entry.image)
			return img, true
		}
		delete(c.entries, key)
	}
	return nil, false
}

// Set stores img and sweeps expired entries. When the cache is still full
// the oldest entry goes.
func (c *Cache) Set(key string, img []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.createdAt.Add(c.ttl)) {
			delete(c.entries, k)
		}
	}
	if _, ok := c.entries[key]; !ok && c.max > 0 && len(c.entries) >= c.max {
		oldest, first := "", true
		for k, e := range c.entries {
			if first || e.createdAt.Before(c.entries[oldest].createdAt) {
				oldest, first = k, false
			}
		}
		delete(c.entries, oldest)
	}
	c.entries[key] = chartCacheEntry{createdAt: now, image: img}
}

// Len reports the number of stored images, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrRender returns the cached image for key or draws and stores a new one.
func (c *Cache) GetOrRender(key string, draw func() ([]byte, error)) ([]byte, error) {
	if img, ok := c.Get(key); ok {
		return img, nil
	}
	img, err := draw()
	if err != nil {
		return nil, err
	}
	c.Set(key, img)
	return img, nil
}
