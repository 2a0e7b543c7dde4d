package enrichment

import (
	"sync"
	"time"
)

// ResultCache is a TTL cache for provider responses, shared across
// enrichers so a rerun over the same workbook does not repeat lookups.
type ResultCache struct {
	config   *CacheConfig
	data     map[string]*cacheEntry
	mutex    sync.RWMutex
	stats    CacheStats
	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	result    *ContactResult
	timestamp time.Time
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewResultCache creates the cache and, when a cleanup interval is set,
// starts background eviction of expired entries.
func NewResultCache(config *CacheConfig) *ResultCache {
	cache := &ResultCache{
		config: config,
		data:   make(map[string]*cacheEntry),
		stop:   make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go cache.startCleanup()
	}

	return cache
}

// Get returns a cached result if present and not expired.
func (c *ResultCache) Get(key string) (*ContactResult, bool) {
	if !c.config.Enabled {
		return nil, false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.data[key]
	if !exists || time.Since(entry.timestamp) > c.config.TTL {
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return entry.result, true
}

// Set stores a result under key.
func (c *ResultCache) Set(key string, result *ContactResult) {
	if !c.config.Enabled {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{result: result, timestamp: time.Now()}
	c.stats.Size = len(c.data)
}

// Remove drops one entry.
func (c *ResultCache) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	c.stats.Size = len(c.data)
}

// Clear resets the cache and its statistics.
func (c *ResultCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*cacheEntry)
	c.stats = CacheStats{}
}

// Stats returns a copy of the current statistics.
func (c *ResultCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := c.stats
	stats.Size = len(c.data)
	return stats
}

// Close stops the background eviction goroutine. Safe to call more than
// once; the cache itself stays usable.
func (c *ResultCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *ResultCache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mutex.Lock()
			for key, entry := range c.data {
				if time.Since(entry.timestamp) > c.config.TTL {
					delete(c.data, key)
				}
			}
			c.stats.Size = len(c.data)
			c.mutex.Unlock()
		}
	}
}
