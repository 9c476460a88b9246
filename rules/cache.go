package rules

import (
	"sync"
	"time"
)

// RulesCache holds the ordered active rule list so evaluation does not
// re-sort the store on every request
type RulesCache interface {
	// Get returns the cached rules, or nil on a miss or expiry
	Get() []*Rule

	// Set stores rules in cache
	Set(rules []*Rule)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// 0 means no expiration (invalidated on mutation only).
	TTL time.Duration
}

// DefaultCacheConfig returns a cache that only expires on mutation
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}

// snapshotCache is an in-memory RulesCache storing an immutable snapshot
type snapshotCache struct {
	config   CacheConfig
	rules    []*Rule
	cachedAt time.Time
	valid    bool
	mu       sync.RWMutex
}

// NewInMemoryRulesCache creates a new in-memory rules cache
func NewInMemoryRulesCache(config CacheConfig) RulesCache {
	return &snapshotCache{config: config}
}

func (c *snapshotCache) Get() []*Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil
	}
	if c.config.TTL > 0 && time.Since(c.cachedAt) > c.config.TTL {
		return nil
	}

	// Callers never see the backing array
	return append([]*Rule(nil), c.rules...)
}

func (c *snapshotCache) Set(rules []*Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules = append(make([]*Rule, 0, len(rules)), rules...)
	c.cachedAt = time.Now()
	c.valid = true
}

func (c *snapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.rules = nil
}
