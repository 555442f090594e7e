package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/cache"
	"github.com/zatekoja/carebook/internal/adapters/database"
	"github.com/zatekoja/carebook/internal/adapters/memory"
	"github.com/zatekoja/carebook/internal/domain/entities"
	redisclient "github.com/zatekoja/carebook/internal/infrastructure/clients/redis"
)

func TestCachedServiceAdapter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := redisclient.NewClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	backing := memory.NewServiceAdapter(&entities.Service{ID: "svc-1", Name: "Consultation", DurationMinutes: 30, IsActive: true})
	adapter := database.NewCachedServiceAdapter(backing, cache.NewRedisAdapter(client), time.Minute)

	services, err := adapter.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, mr.Exists("cache:services:active"))

	svc, err := adapter.GetByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "Consultation", svc.Name)
	assert.True(t, mr.Exists("cache:service:svc-1"))

	// Writes that bypass the cache are not visible until invalidation.
	require.NoError(t, backing.Save(ctx, &entities.Service{ID: "svc-2", Name: "Follow-up", DurationMinutes: 15, IsActive: true}))
	services, err = adapter.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 1)

	require.NoError(t, adapter.Save(ctx, &entities.Service{ID: "svc-1", Name: "Consultation", DurationMinutes: 45, IsActive: true}))
	assert.False(t, mr.Exists("cache:services:active"))
	assert.False(t, mr.Exists("cache:service:svc-1"))

	services, err = adapter.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 2)

	svc, err = adapter.GetByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 45, svc.DurationMinutes)
}
