// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a small bounded cache with time-based expiry.
// It backs the author-fetch and upload caches so repeated requests for the
// same author name or the same file content skip recomputation.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache maps keys to values. Entries expire after the TTL; when the cache
// is full the least recently used entry is evicted. A Cache with max <= 0
// stores nothing, and a nil *Cache behaves the same way. Safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// New creates a cache holding at most max entries for ttl each.
// A zero ttl means entries never expire.
func New[K comparable, V any](ttl time.Duration, max int) *Cache[K, V] {
	if max <= 0 {
		return &Cache[K, V]{}
	}
	return &Cache[K, V]{lru: expirable.NewLRU[K, V](max, nil, ttl)}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if c == nil || c.lru == nil {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

// Set stores value under key, evicting the least recently used entry if
// the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Invalidate removes key.
func (c *Cache[K, V]) Invalidate(key K) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Remove(key)
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache[K, V]) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
