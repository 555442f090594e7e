package events

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/domain/entities"
)

// subscriberBuffer is the per-subscriber queue; slow readers drop events
// rather than stall publishers.
const subscriberBuffer = 100

// hub fans events out to local subscriber channels.
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.ScheduleEvent]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[string]map[chan *entities.ScheduleEvent]struct{})}
}

// add registers a new subscriber and reports whether it is the first on channel.
func (h *hub) add(channel string) (chan *entities.ScheduleEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	first := len(h.subscribers[channel]) == 0
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan *entities.ScheduleEvent]struct{})
	}
	ch := make(chan *entities.ScheduleEvent, subscriberBuffer)
	h.subscribers[channel][ch] = struct{}{}
	return ch, first
}

// remove closes one subscriber and reports whether channel has none left.
func (h *hub) remove(channel string, ch chan *entities.ScheduleEvent) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.subscribers[channel]
	if !ok {
		return false
	}
	if _, ok := subscribers[ch]; !ok {
		return false
	}
	delete(subscribers, ch)
	close(ch)

	if len(subscribers) == 0 {
		delete(h.subscribers, channel)
		return true
	}
	return false
}

// drop closes every subscriber of channel.
func (h *hub) drop(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[channel] {
		close(ch)
	}
	delete(h.subscribers, channel)
}

func (h *hub) channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.subscribers))
	for channel := range h.subscribers {
		out = append(out, channel)
	}
	return out
}

func (h *hub) broadcast(channel string, event *entities.ScheduleEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[channel] {
		select {
		case ch <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
}
