package events

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
)

// MemoryEventBus delivers events to subscribers of the same process. It is
// used when Redis is disabled.
type MemoryEventBus struct {
	hub    *hub
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryEventBus{hub: newHub(), ctx: ctx, cancel: cancel}
}

// Publish delivers event to the current subscribers of channel
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.ScheduleEvent) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	b.hub.broadcast(channel, event)
	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("event_type", string(event.EventType)).Msg("published event")
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ScheduleEvent, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	ch, _ := b.hub.add(channel)
	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.hub.remove(channel, ch)
	}()
	return ch, nil
}

// Unsubscribe closes every subscriber of a channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.hub.drop(channel)
	return nil
}

// Close closes all subscriptions
func (b *MemoryEventBus) Close() error {
	b.cancel()
	for _, channel := range b.hub.channels() {
		b.hub.drop(channel)
	}
	return nil
}
