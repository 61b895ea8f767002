// Package cache is a small typed LRU cache with per-entry expiry.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// LRU caches up to size values. A zero ttl keeps entries until evicted.
type LRU[K comparable, V any] struct {
	cache *lru.Cache[K, item[V]]
	ttl   time.Duration
	now   func() time.Time
}

// New creates an LRU cache.
func New[K comparable, V any](size int, ttl time.Duration) (*LRU[K, V], error) {
	c, err := lru.New[K, item[V]](size)
	if err != nil {
		return nil, fmt.Errorf("lru: %w", err)
	}
	return &LRU[K, V]{cache: c, ttl: ttl, now: time.Now}, nil
}

// Set stores value under key.
func (c *LRU[K, V]) Set(key K, value V) {
	it := item[V]{value: value}
	if c.ttl > 0 {
		it.expiresAt = c.now().Add(c.ttl)
	}
	c.cache.Add(key, it)
}

// Get returns the value for key if present and not expired.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	it, ok := c.cache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		c.cache.Remove(key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Delete drops key.
func (c *LRU[K, V]) Delete(key K) {
	c.cache.Remove(key)
}

// Len returns the number of cached entries, expired ones included.
func (c *LRU[K, V]) Len() int {
	return c.cache.Len()
}
