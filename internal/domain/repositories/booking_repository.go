package repositories

import (
	"context"

	"github.com/zatekoja/carebook/internal/domain/entities"
)

// BookingRepository is the booking ledger. Implementations must reject a
// Create or Update that would leave two active bookings on the same SlotKey,
// returning an ErrorTypeSlotTaken AppError.
type BookingRepository interface {
	// Create inserts a new booking
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// Update replaces a booking's mutable fields
	Update(ctx context.Context, booking *entities.Booking) error

	// Delete physically removes a booking
	Delete(ctx context.Context, id string) error

	// FindActiveAt returns the active booking holding key, ignoring excludeID, or nil
	FindActiveAt(ctx context.Context, key entities.SlotKey, excludeID string) (*entities.Booking, error)

	// List retrieves bookings matching the filter ordered by date and start time
	List(ctx context.Context, filter BookingFilter) ([]*entities.Booking, error)
}

// BookingFilter defines filters for listing bookings
type BookingFilter struct {
	ProviderID string
	Date       *entities.Date
	Statuses   []entities.BookingStatus
	Limit      int
	Offset     int
}

// Matches reports whether b passes the filter, ignoring paging.
func (f BookingFilter) Matches(b *entities.Booking) bool {
	if f.ProviderID != "" && b.ProviderID != f.ProviderID {
		return false
	}
	if f.Date != nil && b.Date != *f.Date {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if b.Status == s {
			return true
		}
	}
	return false
}
