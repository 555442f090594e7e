package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/events"
	"github.com/zatekoja/carebook/internal/api/handlers"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
)

// syncRecorder guards the recorder body so the test can read it while the handler writes.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (s *syncRecorder) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ResponseRecorder.Write(b)
}

func (s *syncRecorder) body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ResponseRecorder.Body.String()
}

func TestSSEHandler_StreamProviderUpdates(t *testing.T) {
	bus := events.NewMemoryEventBus()
	defer bus.Close()
	handler := handlers.NewSSEHandler(bus).WithHeartbeat(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream/providers/A", nil)
	req.SetPathValue("id", "A")
	req = req.WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		handler.StreamProviderUpdates(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return strings.Contains(w.body(), "event: connected") }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, handler.ClientCount())

	event := entities.NewScheduleEvent("A", entities.ScheduleEventAvailabilityChanged, map[string]interface{}{"slot": "09:00"})
	require.NoError(t, bus.Publish(context.Background(), providers.GetProviderChannel("A"), event))

	require.Eventually(t, func() bool {
		return strings.Contains(w.body(), "event: availability_changed") && strings.Contains(w.body(), "event: heartbeat")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after cancel")
	}

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, 0, handler.ClientCount())
	assert.Contains(t, w.body(), event.ID)
}

func TestSSEHandler_MissingProviderID(t *testing.T) {
	handler := handlers.NewSSEHandler(events.NewMemoryEventBus())

	req := httptest.NewRequest(http.MethodGet, "/api/stream/providers/", nil)
	w := httptest.NewRecorder()

	handler.StreamProviderUpdates(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("provider ID is required")))
}
