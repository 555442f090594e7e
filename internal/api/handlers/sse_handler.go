package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/domain/providers"
)

const defaultHeartbeat = 30 * time.Second

// SSEHandler streams schedule events so open clients can refresh their slot
// lists after another client books, reschedules or toggles availability.
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   atomic.Int64
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: defaultHeartbeat,
	}
}

// WithHeartbeat overrides the heartbeat interval
func (h *SSEHandler) WithHeartbeat(interval time.Duration) *SSEHandler {
	h.heartbeat = interval
	return h
}

// StreamProviderUpdates handles GET /api/stream/providers/{id}
func (h *SSEHandler) StreamProviderUpdates(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}
	h.stream(w, r, providers.GetProviderChannel(providerID), map[string]interface{}{
		"provider_id": providerID,
	})
}

// StreamScheduleUpdates handles GET /api/stream/schedule
func (h *SSEHandler) StreamScheduleUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelScheduleUpdates, map[string]interface{}{})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to channel")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to updates")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.clients.Add(1)
	defer h.clients.Add(-1)

	hello["timestamp"] = time.Now().UTC()
	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("channel", channel).Msg("client disconnected from schedule stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// ClientCount returns the number of connected clients
func (h *SSEHandler) ClientCount() int {
	return int(h.clients.Load())
}
