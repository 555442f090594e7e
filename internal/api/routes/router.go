package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/api/handlers"
	"github.com/zatekoja/carebook/internal/api/middleware"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
)

// Pinger is a backing service checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	availabilityHandler *handlers.AvailabilityHandler
	bookingHandler      *handlers.BookingHandler
	sseHandler          *handlers.SSEHandler

	dependencies map[string]Pinger
	metrics      *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	availabilityHandler *handlers.AvailabilityHandler,
	bookingHandler *handlers.BookingHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		availabilityHandler: availabilityHandler,
		bookingHandler:      bookingHandler,
		sseHandler:          sseHandler,
		dependencies:        make(map[string]Pinger),
		metrics:             metrics,
	}
}

// WithDependency registers a backing service for GET /ready
func (r *Router) WithDependency(name string, p Pinger) *Router {
	if p != nil {
		r.dependencies[name] = p
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})
	r.mux.HandleFunc("GET /ready", r.ready)

	// Provider directory and availability
	r.mux.HandleFunc("GET /api/providers", r.availabilityHandler.ListProviders)
	r.mux.HandleFunc("GET /api/providers/{id}", r.availabilityHandler.GetProvider)
	r.mux.HandleFunc("GET /api/providers/{id}/availability", r.availabilityHandler.GetAvailability)
	r.mux.HandleFunc("POST /api/providers/{id}/exceptions", r.availabilityHandler.ToggleException)
	r.mux.HandleFunc("POST /api/providers/{id}/weekly-slots", r.availabilityHandler.ToggleWeeklySlot)
	r.mux.HandleFunc("GET /api/services", r.availabilityHandler.ListServices)
	r.mux.HandleFunc("GET /api/availability/open-slots", r.availabilityHandler.ListOpenSlots)

	// Bookings
	r.mux.HandleFunc("GET /api/bookings", r.bookingHandler.ListBookings)
	r.mux.HandleFunc("POST /api/bookings", r.bookingHandler.CreateBooking)
	r.mux.HandleFunc("GET /api/bookings/{id}", r.bookingHandler.GetBooking)
	r.mux.HandleFunc("PUT /api/bookings/{id}", r.bookingHandler.UpdateBooking)
	r.mux.HandleFunc("PATCH /api/bookings/{id}/status", r.bookingHandler.SetStatus)
	r.mux.HandleFunc("DELETE /api/bookings/{id}", r.bookingHandler.DeleteBooking)

	// Live updates
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/providers/{id}", r.sseHandler.StreamProviderUpdates)
		r.mux.HandleFunc("GET /api/stream/schedule", r.sseHandler.StreamScheduleUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflights never reach the handlers
	handler = middleware.CORSMiddleware(handler)

	return handler
}

func (r *Router) ready(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(r.dependencies))
	healthy := true
	for name, dep := range r.dependencies {
		if err := dep.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	handlers.RespondJSON(w, code, status)
}
