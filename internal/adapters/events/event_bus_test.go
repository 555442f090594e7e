package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/events"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
	redisclient "github.com/zatekoja/carebook/internal/infrastructure/clients/redis"
)

func newRedisBus(t *testing.T) providers.EventBus {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisclient.NewClientWithOptions(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return events.NewRedisEventBus(client)
}

func receive(t *testing.T, ch <-chan *entities.ScheduleEvent) *entities.ScheduleEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	buses := map[string]func(t *testing.T) providers.EventBus{
		"memory": func(t *testing.T) providers.EventBus { return events.NewMemoryEventBus() },
		"redis":  newRedisBus,
	}

	for name, build := range buses {
		t.Run(name, func(t *testing.T) {
			bus := build(t)
			defer bus.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			channel := providers.GetProviderChannel("dr-a")
			sub, err := bus.Subscribe(ctx, channel)
			require.NoError(t, err)

			event := entities.NewScheduleEvent("dr-a", entities.ScheduleEventAvailabilityChanged, map[string]interface{}{"date": "2024-05-06"})
			require.NoError(t, bus.Publish(ctx, channel, event))

			got := receive(t, sub)
			assert.Equal(t, event.ID, got.ID)
			assert.Equal(t, entities.ScheduleEventAvailabilityChanged, got.EventType)
			assert.Equal(t, "dr-a", got.ProviderID)
		})
	}
}

func TestEventBus_SubscriberClosedOnCancel(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bus.Subscribe(ctx, providers.EventChannelScheduleUpdates)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel was not closed")
	}
}

func TestMemoryEventBus_OtherChannelsNotDelivered(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	ctx := context.Background()
	sub, err := bus.Subscribe(ctx, providers.GetProviderChannel("dr-a"))
	require.NoError(t, err)

	event := entities.NewScheduleEvent("dr-b", entities.ScheduleEventBookingCreated, nil)
	require.NoError(t, bus.Publish(ctx, providers.GetProviderChannel("dr-b"), event))

	select {
	case <-sub:
		t.Fatal("received event for another provider")
	case <-time.After(50 * time.Millisecond):
	}
}
