package amadeus

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ResponseCache stores raw response payloads by key
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// SimpleCache is a basic thread-safe in-memory cache
type SimpleCache struct {
	data map[string]cacheItem
	mu   sync.RWMutex
	now  func() time.Time
}

type cacheItem struct {
	value      []byte
	expiryTime time.Time
}

var _ ResponseCache = (*SimpleCache)(nil)

// NewSimpleCache creates a new cache instance
func NewSimpleCache() *SimpleCache {
	return &SimpleCache{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

// Get retrieves a value from the cache
func (c *SimpleCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.data[key]
	if !found || c.now().After(item.expiryTime) {
		return nil, false
	}
	return item.value, true
}

// Set adds a value to the cache with a TTL
func (c *SimpleCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheItem{
		value:      value,
		expiryTime: c.now().Add(ttl),
	}
}

// GenerateCacheKey creates a unique key for caching based on inputs
func GenerateCacheKey(prefix string, params ...interface{}) string {
	return fmt.Sprintf("%s:%v", prefix, params)
}
