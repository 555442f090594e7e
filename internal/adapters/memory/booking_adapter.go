package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

// BookingAdapter is an in-process booking ledger keyed by booking ID with a
// secondary index of active slot keys.
type BookingAdapter struct {
	mu       sync.RWMutex
	bookings map[string]*entities.Booking
	active   map[entities.SlotKey]string
}

// NewBookingAdapter creates an empty in-memory ledger
func NewBookingAdapter() *BookingAdapter {
	return &BookingAdapter{
		bookings: make(map[string]*entities.Booking),
		active:   make(map[entities.SlotKey]string),
	}
}

var _ repositories.BookingRepository = (*BookingAdapter)(nil)

// Create inserts a new booking
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.bookings[booking.ID]; exists {
		return apperrors.NewValidationError(fmt.Sprintf("booking with id %s already exists", booking.ID))
	}
	if booking.Status.IsActive() {
		if holder, taken := a.active[booking.Key()]; taken {
			return apperrors.NewSlotTakenError(fmt.Sprintf("slot %s is held by booking %s", booking.Key(), holder))
		}
		a.active[booking.Key()] = booking.ID
	}
	a.bookings[booking.ID] = booking.Clone()
	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	booking, ok := a.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	return booking.Clone(), nil
}

// Update replaces a booking's mutable fields
func (a *BookingAdapter) Update(ctx context.Context, booking *entities.Booking) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, ok := a.bookings[booking.ID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", booking.ID))
	}

	if booking.Status.IsActive() {
		if holder, taken := a.active[booking.Key()]; taken && holder != booking.ID {
			return apperrors.NewSlotTakenError(fmt.Sprintf("slot %s is held by booking %s", booking.Key(), holder))
		}
	}

	if current.Status.IsActive() {
		delete(a.active, current.Key())
	}
	if booking.Status.IsActive() {
		a.active[booking.Key()] = booking.ID
	}
	a.bookings[booking.ID] = booking.Clone()
	return nil
}

// Delete physically removes a booking
func (a *BookingAdapter) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	booking, ok := a.bookings[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if booking.Status.IsActive() && a.active[booking.Key()] == id {
		delete(a.active, booking.Key())
	}
	delete(a.bookings, id)
	return nil
}

// FindActiveAt returns the active booking holding key, ignoring excludeID
func (a *BookingAdapter) FindActiveAt(ctx context.Context, key entities.SlotKey, excludeID string) (*entities.Booking, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	id, ok := a.active[key]
	if !ok || id == excludeID {
		return nil, nil
	}
	return a.bookings[id].Clone(), nil
}

// List retrieves bookings matching the filter ordered by date and start time
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	a.mu.RLock()
	matched := make([]*entities.Booking, 0)
	for _, b := range a.bookings {
		if filter.Matches(b) {
			matched = append(matched, b.Clone())
		}
	}
	a.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date.Before(matched[j].Date)
		}
		if matched[i].StartTime != matched[j].StartTime {
			return matched[i].StartTime.Minutes() < matched[j].StartTime.Minutes()
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*entities.Booking{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
