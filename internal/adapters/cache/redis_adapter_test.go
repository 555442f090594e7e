package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/cache"
	redisclient "github.com/zatekoja/carebook/internal/infrastructure/clients/redis"
)

func newAdapter(t *testing.T) (*miniredis.Miniredis, *cache.RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisclient.NewClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, cache.NewRedisAdapter(client).(*cache.RedisAdapter)
}

func TestRedisAdapter_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	mr, adapter := newAdapter(t)

	require.NoError(t, adapter.Set(ctx, "services:active", []byte(`[]`), 60))
	assert.True(t, mr.Exists("cache:services:active"))

	value, err := adapter.Get(ctx, "services:active")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)

	exists, err := adapter.Exists(ctx, "services:active")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, "services:active"))
	_, err = adapter.Get(ctx, "services:active")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestRedisAdapter_Expiration(t *testing.T) {
	ctx := context.Background()
	mr, adapter := newAdapter(t)

	require.NoError(t, adapter.Set(ctx, "service:svc-1", []byte(`{}`), 5))
	mr.FastForward(6 * time.Second)

	_, err := adapter.Get(ctx, "service:svc-1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
