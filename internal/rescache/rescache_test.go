package rescache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(10)

	require.NoError(t, cache.Set(ctx, "k1", payload{Query: "weather", Count: 3}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Query: "weather", Count: 3}, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	var got payload
	found, err := NewMemory(10).Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(10)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k1", payload{Query: "q"}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)

	// Advance past the TTL; the entry must be treated as gone.
	now = now.Add(2 * time.Minute)
	found, err = cache.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheLastWriterWins(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(10)

	require.NoError(t, cache.Set(ctx, "k", payload{Count: 1}, time.Minute))
	require.NoError(t, cache.Set(ctx, "k", payload{Count: 2}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, got.Count)
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(10)

	require.NoError(t, cache.Set(ctx, "k", payload{Count: 1}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	var got payload
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func setupRedisCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisWithClient(client), srv
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupRedisCache(t)

	require.NoError(t, cache.Set(ctx, "k1", payload{Query: "news", Count: 5}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Query: "news", Count: 5}, got)
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache, srv := setupRedisCache(t)

	require.NoError(t, cache.Set(ctx, "k1", payload{Query: "q"}, time.Minute))

	srv.FastForward(2 * time.Minute)

	var got payload
	found, err := cache.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupRedisCache(t)

	require.NoError(t, cache.Set(ctx, "k", payload{Count: 1}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	var got payload
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
