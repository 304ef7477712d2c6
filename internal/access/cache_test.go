package access

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	_, hit, err := cache.GetCapabilities(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.SetCapabilities(ctx, "p1", []string{"user", "vendor"}))

	capabilities, hit, err := cache.GetCapabilities(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"user", "vendor"}, capabilities)
}

func TestRedisCacheInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCapabilities(ctx, "p1", []string{"user"}))
	require.NoError(t, cache.Invalidate(ctx, "p1"))

	_, hit, err := cache.GetCapabilities(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCacheTTLExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCapabilities(ctx, "p1", []string{"user"}))

	mr.FastForward(2 * time.Minute)

	_, hit, err := cache.GetCapabilities(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, hit)
}
