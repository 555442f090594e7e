package entities

import (
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that hold a slot.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// ParseBookingStatus resolves a status name, case-insensitively.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return status, true
	}
	return "", false
}

// IsActive reports whether the status holds its slot.
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusCancelled
}

// IsTerminal reports whether no transition leaves the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo reports whether s -> next is an allowed edge.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking represents an appointment held by a client with a provider
type Booking struct {
	ID              string        `json:"id" db:"id"`
	Code            string        `json:"code" db:"code"`
	ClientName      string        `json:"client_name" db:"client_name"`
	ProviderID      string        `json:"provider_id" db:"provider_id"`
	ProviderName    string        `json:"provider_name" db:"provider_name"`
	ServiceID       string        `json:"service_id" db:"service_id"`
	ServiceName     string        `json:"service_name" db:"service_name"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes"`
	Date            Date          `json:"date" db:"date"`
	StartTime       Slot          `json:"start_time" db:"start_time"`
	Status          BookingStatus `json:"status" db:"status"`
	Notes           string        `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// SlotKey identifies the (provider, date, start time) a booking occupies.
type SlotKey struct {
	ProviderID string
	Date       Date
	StartTime  Slot
}

// Key returns the slot the booking occupies.
func (b *Booking) Key() SlotKey {
	return SlotKey{ProviderID: b.ProviderID, Date: b.Date, StartTime: b.StartTime}
}

func (k SlotKey) String() string {
	return k.ProviderID + "|" + k.Date.String() + "|" + string(k.StartTime)
}

// Clone returns a copy safe to hand out of a store.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
