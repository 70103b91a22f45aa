package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rentix/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), CBSRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, CBSRateLimit.Limit, remaining)
	assert.NoError(t, limiter.Wait(context.Background(), BOIRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "v", TTLShort))
	n, err := cache.DeletePrefix(ctx, "index:")
	require.NoError(t, err)
	assert.Zero(t, n)

	// GetOrSet falls through to fn
	err = cache.GetOrSet(ctx, "key", &result, TTLShort, func() (interface{}, error) {
		return "computed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", result)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "index:cpi:2024-01", IndexPointKey("cpi", "2024-01"))
	assert.Equal(t, "bases:cpi", IndexBasesKey("cpi"))
	assert.Equal(t, "index:cpi:", SeriesPrefix("cpi"))
}

// Integration: REDIS_ADDR=localhost:6379 go test ./pkg/redis/...
func TestCache_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := Wrap(goredis.NewClient(&goredis.Options{Addr: addr}))
	defer client.Close()
	cache := NewCache(client, "rentix-test")
	ctx := context.Background()

	type point struct{ Value string }
	require.NoError(t, cache.Set(ctx, IndexPointKey("cpi", "2024-01"), point{"101.2"}, time.Minute))

	var got point
	found, err := cache.Get(ctx, IndexPointKey("cpi", "2024-01"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "101.2", got.Value)

	n, err := cache.DeletePrefix(ctx, SeriesPrefix("cpi"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err = cache.Get(ctx, IndexPointKey("cpi", "2024-01"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}
