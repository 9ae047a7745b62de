package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("k", []string{"a"}, time.Minute)
	v, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []string{"a"}, v)

	c.Delete("k")
	_, found = c.Get("k")
	assert.False(t, found)
}

func TestMemoryCacheDeleteFiresEvictionHook(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	var evicted []string
	c.OnEvicted(func(key string, value interface{}) {
		evicted = append(evicted, key)
	})

	c.Set("session:1", 1, time.Minute)
	c.Delete("session:1")
	c.Delete("session:1")

	assert.Equal(t, []string{"session:1"}, evicted)
}

func TestMemoryCacheExpiryFiresEvictionHook(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10*time.Millisecond)

	evicted := make(chan string, 1)
	c.OnEvicted(func(key string, value interface{}) {
		evicted <- key
	})

	c.Set("short", "v", 5*time.Millisecond)

	select {
	case key := <-evicted:
		assert.Equal(t, "short", key)
	case <-time.After(2 * time.Second):
		t.Fatal("expected expired item to be evicted")
	}
}

func TestMemoryCacheItemsAndFlush(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	items := c.Items()
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, items)

	c.Flush()
	assert.Empty(t, c.Items())
}
