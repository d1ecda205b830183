package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a size-bounded LRU with per-entry expiry.
type Cache[V any] struct {
	lru *lru.Cache[string, cacheItem[V]]
}

func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lru: l}, nil
}

// Set stores value under key for ttl.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.lru.Add(key, cacheItem[V]{value: value, expiresAt: time.Now().Add(ttl)})
}

// Get returns the value if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	item, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if time.Now().After(item.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return item.value, true
}

func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
