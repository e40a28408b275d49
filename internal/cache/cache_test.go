// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string, int](time.Minute, 4)
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	c := New[string, string](20*time.Millisecond, 4)
	c.Set("jane doe", "pubs")
	_, ok := c.Get("jane doe")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("jane doe")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := New[string, int](0, 2)
	c.Set("k", 1)
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](0, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_InvalidateAndPurge(t *testing.T) {
	c := New[string, int](0, 8)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_DisabledAndNil(t *testing.T) {
	c := New[string, int](time.Minute, 0)
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	var nilCache *Cache[string, int]
	nilCache.Set("a", 1)
	nilCache.Invalidate("a")
	nilCache.Purge()
	_, ok = nilCache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, nilCache.Len())
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int, int](time.Minute, 16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(i*100+j, j)
				c.Get(i*100 + j)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
