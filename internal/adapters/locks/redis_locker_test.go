package locks_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/locks"
	redisclient "github.com/zatekoja/carebook/internal/infrastructure/clients/redis"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisclient.NewClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_ExclusiveUntilRelease(t *testing.T) {
	mr, client := newMiniredisClient(t)
	locker := locks.NewRedisLocker(client, 5*time.Second, 50*time.Millisecond)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "slot:A|2024-05-06|09:00")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:slot:A|2024-05-06|09:00"))

	_, err = locker.Acquire(ctx, "slot:A|2024-05-06|09:00")
	assert.Error(t, err)

	release()
	assert.False(t, mr.Exists("lock:slot:A|2024-05-06|09:00"))

	release2, err := locker.Acquire(ctx, "slot:A|2024-05-06|09:00")
	require.NoError(t, err)
	release2()
}

func TestRedisLocker_ReleaseDoesNotDropForeignToken(t *testing.T) {
	mr, client := newMiniredisClient(t)
	locker := locks.NewRedisLocker(client, time.Second, 50*time.Millisecond)

	release, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)

	// Simulate TTL expiry followed by another instance taking the key.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:k", "someone-else"))

	release()
	got, err := mr.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
