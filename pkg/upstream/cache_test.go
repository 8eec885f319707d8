package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestResponseCacheMemoryOnly(t *testing.T) {
	cache := NewResponseCache(32, time.Minute, nil)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "http://data/records?state=Kerala")
	assert.False(t, ok)

	cache.Set(ctx, "http://data/records?state=Kerala", []byte(`[1,2,3]`))
	body, ok := cache.Get(ctx, "http://data/records?state=Kerala")
	require.True(t, ok)
	assert.Equal(t, []byte(`[1,2,3]`), body)

	// Distinct endpoints never collide.
	_, ok = cache.Get(ctx, "http://data/records?state=Bihar")
	assert.False(t, ok)
}

func TestResponseCacheRedisPromotion(t *testing.T) {
	cache := NewResponseCache(32, time.Minute, newTestRedis(t))
	ctx := context.Background()

	cache.Set(ctx, "http://data/coverage", []byte(`{"Kerala": 92}`))

	// Dropping the memory tier forces the next read through Redis.
	cache.Purge()
	body, ok := cache.Get(ctx, "http://data/coverage")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"Kerala": 92}`), body)

	// The Redis hit was promoted back into memory.
	var tiers []string
	cache.Instrument(func(tier string) { tiers = append(tiers, tier) }, nil)
	_, ok = cache.Get(ctx, "http://data/coverage")
	require.True(t, ok)
	assert.Equal(t, []string{"memory"}, tiers)
}

func TestResponseCacheRedisOutageDegrades(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cache := NewResponseCache(32, time.Minute, client)
	ctx := context.Background()

	mr.Close()

	cache.Set(ctx, "http://data/records", []byte(`[]`))
	body, ok := cache.Get(ctx, "http://data/records")
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), body)
}

func TestResponseCacheInstrument(t *testing.T) {
	cache := NewResponseCache(32, time.Minute, newTestRedis(t))
	ctx := context.Background()

	var hits []string
	misses := 0
	cache.Instrument(func(tier string) { hits = append(hits, tier) }, func() { misses++ })

	cache.Get(ctx, "http://data/records")
	cache.Set(ctx, "http://data/records", []byte(`[]`))
	cache.Get(ctx, "http://data/records")
	cache.Purge()
	cache.Get(ctx, "http://data/records")

	assert.Equal(t, []string{"memory", "redis"}, hits)
	assert.Equal(t, 1, misses)
}

func TestResponseCacheTTL(t *testing.T) {
	cache := NewResponseCache(32, 50*time.Millisecond, nil)
	ctx := context.Background()

	cache.Set(ctx, "http://data/records", []byte(`[]`))
	_, ok := cache.Get(ctx, "http://data/records")
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)
	_, ok = cache.Get(ctx, "http://data/records")
	assert.False(t, ok)
}
