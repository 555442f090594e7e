package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zatekoja/carebook/internal/domain/entities"
)

// AvailabilityService defines the provider directory and slot resolution operations
type AvailabilityService interface {
	ListProviders(ctx context.Context) ([]*entities.Provider, error)
	GetProvider(ctx context.Context, id string) (*entities.Provider, error)
	ListActiveServices(ctx context.Context) ([]*entities.Service, error)
	ListAvailableSlots(ctx context.Context, providerID string, date entities.Date) ([]entities.SlotAvailability, error)
	ListOpenSlotsIgnoringProviderTemplate(ctx context.Context, date entities.Date) ([]entities.SlotAvailability, error)
	SetDayException(ctx context.Context, providerID string, date entities.Date) (*entities.Provider, error)
	SetWeeklySlot(ctx context.Context, providerID string, weekday time.Weekday, slot entities.Slot) (*entities.Provider, error)
}

// AvailabilityHandler handles provider, catalog and availability requests
type AvailabilityHandler struct {
	service AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
	}
}

// ListProviders handles GET /api/providers
func (h *AvailabilityHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListProviders(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"providers": list,
		"count":     len(list),
	})
}

// GetProvider handles GET /api/providers/{id}
func (h *AvailabilityHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	provider, err := h.service.GetProvider(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, provider)
}

// ListServices handles GET /api/services
func (h *AvailabilityHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActiveServices(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": list,
		"count":    len(list),
	})
}

// GetAvailability handles GET /api/providers/{id}/availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	slots, err := h.service.ListAvailableSlots(r.Context(), providerID, date)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"provider_id": providerID,
		"date":        date,
		"slots":       slots,
	})
}

// ListOpenSlots handles GET /api/availability/open-slots?date=YYYY-MM-DD
func (h *AvailabilityHandler) ListOpenSlots(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	slots, err := h.service.ListOpenSlotsIgnoringProviderTemplate(r.Context(), date)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"slots": slots,
	})
}

type exceptionRequest struct {
	Date entities.Date `json:"date"`
}

// ToggleException handles POST /api/providers/{id}/exceptions
func (h *AvailabilityHandler) ToggleException(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	var req exceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	provider, err := h.service.SetDayException(r.Context(), providerID, req.Date)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithOutcome(w, http.StatusOK, "provider", provider)
}

type weeklySlotRequest struct {
	Weekday string        `json:"weekday"`
	Slot    entities.Slot `json:"slot"`
}

// ToggleWeeklySlot handles POST /api/providers/{id}/weekly-slots
func (h *AvailabilityHandler) ToggleWeeklySlot(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("id")
	if providerID == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	var req weeklySlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	weekday, err := entities.ParseWeekday(req.Weekday)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.service.SetWeeklySlot(r.Context(), providerID, weekday, req.Slot)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithOutcome(w, http.StatusOK, "provider", provider)
}

// dateParam reads the required ?date= query parameter, writing a 400 when it is missing or malformed.
func dateParam(w http.ResponseWriter, r *http.Request) (entities.Date, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return entities.Date{}, false
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return entities.Date{}, false
	}
	return date, true
}
