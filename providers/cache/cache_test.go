package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		c.Set(ctx, "key", []byte("value"), time.Minute)

		data, found := c.Get(ctx, "key")
		assert.True(t, found)
		assert.Equal(t, []byte("value"), data)
	})

	t.Run("MissingKey", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		data, found := c.Get(ctx, "missing")
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("ExpiredEntryReadsAsMiss", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		c.Set(ctx, "key", []byte("value"), time.Millisecond)
		time.Sleep(5 * time.Millisecond)

		_, found := c.Get(ctx, "key")
		assert.False(t, found)
	})

	t.Run("NilValueIgnored", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		c.Set(ctx, "key", nil, time.Minute)

		_, found := c.Get(ctx, "key")
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		c.Set(ctx, "key", []byte("value"), time.Minute)
		c.Delete(ctx, "key")

		_, found := c.Get(ctx, "key")
		assert.False(t, found)
	})

	t.Run("Clear", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		c.Set(ctx, "a", []byte("1"), time.Minute)
		c.Set(ctx, "b", []byte("2"), time.Minute)
		c.Clear(ctx)

		_, foundA := c.Get(ctx, "a")
		_, foundB := c.Get(ctx, "b")
		assert.False(t, foundA)
		assert.False(t, foundB)
	})

	t.Run("RemoveExpiredEntries", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Stop()

		c.Set(ctx, "stale", []byte("old"), time.Millisecond)
		c.Set(ctx, "fresh", []byte("new"), time.Minute)
		time.Sleep(5 * time.Millisecond)

		c.removeExpiredEntries()

		c.mutex.RLock()
		_, staleExists := c.data["stale"]
		_, freshExists := c.data["fresh"]
		c.mutex.RUnlock()

		assert.False(t, staleExists)
		assert.True(t, freshExists)
	})
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	newTestRedisCache := func(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
		server := miniredis.RunT(t)
		c, err := NewRedisCache(&RedisCacheConfig{Addr: server.Addr()})
		require.NoError(t, err)
		return c, server
	}

	t.Run("SetAndGet", func(t *testing.T) {
		c, _ := newTestRedisCache(t)
		defer func() { _ = c.Close() }()

		c.Set(ctx, "key", []byte("value"), time.Minute)

		data, found := c.Get(ctx, "key")
		assert.True(t, found)
		assert.Equal(t, []byte("value"), data)
	})

	t.Run("MissingKey", func(t *testing.T) {
		c, _ := newTestRedisCache(t)
		defer func() { _ = c.Close() }()

		data, found := c.Get(ctx, "missing")
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		c, server := newTestRedisCache(t)
		defer func() { _ = c.Close() }()

		c.Set(ctx, "key", []byte("value"), time.Minute)
		server.FastForward(2 * time.Minute)

		_, found := c.Get(ctx, "key")
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		c, _ := newTestRedisCache(t)
		defer func() { _ = c.Close() }()

		c.Set(ctx, "key", []byte("value"), time.Minute)
		c.Delete(ctx, "key")

		_, found := c.Get(ctx, "key")
		assert.False(t, found)
	})

	t.Run("Clear", func(t *testing.T) {
		c, _ := newTestRedisCache(t)
		defer func() { _ = c.Close() }()

		c.Set(ctx, "a", []byte("1"), time.Minute)
		c.Set(ctx, "b", []byte("2"), time.Minute)
		c.Clear(ctx)

		_, foundA := c.Get(ctx, "a")
		_, foundB := c.Get(ctx, "b")
		assert.False(t, foundA)
		assert.False(t, foundB)
	})

	t.Run("ConnectionFailure", func(t *testing.T) {
		c, err := NewRedisCache(&RedisCacheConfig{Addr: "localhost:1"})
		assert.Error(t, err)
		assert.Nil(t, c)
	})
}
