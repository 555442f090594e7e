package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/carebook/internal/application/services"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
)

// BookingService defines the booking commit and lifecycle operations
type BookingService interface {
	CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*entities.Booking, error)
	UpdateBooking(ctx context.Context, id string, req services.RescheduleRequest) (*entities.Booking, error)
	SetStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error)
	GetBooking(ctx context.Context, id string) (*entities.Booking, error)
	ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// BookingHandler handles booking requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithOutcome(w, http.StatusCreated, "booking", booking)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// ListBookings handles GET /api/bookings?provider_id=&date=&status=&limit=&offset=
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.BookingFilter{
		ProviderID: query.Get("provider_id"),
	}

	if raw := query.Get("date"); raw != "" {
		date, err := entities.ParseDate(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
			return
		}
		filter.Date = &date
	}

	if raw := query.Get("status"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			status, ok := entities.ParseBookingStatus(name)
			if !ok {
				respondWithError(w, http.StatusBadRequest, "invalid status: "+name)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		filter.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		filter.Offset = offset
	}

	bookings, err := h.service.ListBookings(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// UpdateBooking handles PUT /api/bookings/{id}
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	var req services.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	booking, err := h.service.UpdateBooking(r.Context(), id, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithOutcome(w, http.StatusOK, "booking", booking)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	status, ok := entities.ParseBookingStatus(req.Status)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}

	booking, err := h.service.SetStatus(r.Context(), id, status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithOutcome(w, http.StatusOK, "booking", booking)
}

// DeleteBooking handles DELETE /api/bookings/{id}
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "booking ID is required")
		return
	}

	if err := h.service.DeleteBooking(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
