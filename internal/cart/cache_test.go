package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)

	c := Cart{UserID: 1, Items: []Item{{ProductID: 3, Quantity: 2, Price: decimal.RequireFromString("19.99")}}, Version: 4}
	require.NoError(t, cache.Set(ctx, c))

	ttl := mr.TTL(cacheKey(1))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Version)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("19.99")))

	require.NoError(t, cache.Delete(ctx, 1))
	_, err = cache.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheKeepsNewerVersion(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, Cart{UserID: 1, Items: []Item{{ProductID: 3, Quantity: 5}}, Version: 2}))
	require.NoError(t, cache.Set(ctx, Cart{UserID: 1, Items: []Item{{ProductID: 3, Quantity: 1}}, Version: 1}))

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, 5, got.Items[0].Quantity)

	require.NoError(t, cache.Delete(ctx, 1))
	require.NoError(t, cache.Set(ctx, Cart{UserID: 1, Version: 1}))
	_, err = cache.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss, "an older copy cannot come back after a delete")

	require.NoError(t, cache.Set(ctx, Cart{UserID: 1, Version: 3}))
	got, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey(2), "not json"))

	_, err := cache.Get(context.Background(), 2)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
