package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/events"
	"github.com/zatekoja/carebook/internal/adapters/locks"
	"github.com/zatekoja/carebook/internal/adapters/memory"
	"github.com/zatekoja/carebook/internal/api/handlers"
	"github.com/zatekoja/carebook/internal/application/services"
	"github.com/zatekoja/carebook/internal/domain/entities"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	ctx := context.Background()

	providers := memory.NewProviderAdapter()
	catalog := memory.NewServiceAdapter()
	bookings := memory.NewBookingAdapter()

	provider := &entities.Provider{ID: "A", Name: "Dr. A"}
	provider.ToggleWeeklySlot(entities.MustParseDate("2024-05-06").Weekday(), "09:00")
	require.NoError(t, providers.Save(ctx, provider))
	require.NoError(t, catalog.Save(ctx, &entities.Service{ID: "S1", Name: "Checkup", DurationMinutes: 30, IsActive: true}))

	locker := locks.NewKeyedMutex()
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	availability := services.NewAvailabilityService(providers, catalog, bookings, locker, bus, nil)
	booking := services.NewBookingService(bookings, providers, catalog, locker, bus, nil)

	return NewRouter(
		handlers.NewAvailabilityHandler(availability),
		handlers.NewBookingHandler(booking),
		handlers.NewSSEHandler(bus),
		nil,
	)
}

func TestRouter_BookingRoundTrip(t *testing.T) {
	handler := newTestRouter(t).SetupRoutes()

	body := `{"provider_id":"A","service_id":"S1","date":"2024-05-06","start_time":"09:00","client_name":"Jane"}`
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "slot_taken")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/providers/A/availability?date=2024-05-06", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slot":"09:00","is_available":false,"is_booked":true`)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	handler := newTestRouter(t).SetupRoutes()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/providers", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_Readiness(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestRouter(t).WithDependency("postgres", pingFunc(func(context.Context) error { return nil }))
		w := httptest.NewRecorder()
		router.SetupRoutes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"postgres":"ok"}`, w.Body.String())
	})

	t.Run("degraded", func(t *testing.T) {
		router := newTestRouter(t).WithDependency("redis", pingFunc(func(context.Context) error { return errors.New("refused") }))
		w := httptest.NewRecorder()
		router.SetupRoutes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"redis":"unavailable"}`, w.Body.String())
	})
}
