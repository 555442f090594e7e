package entities

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleEventType represents the type of schedule event
type ScheduleEventType string

const (
	ScheduleEventBookingCreated       ScheduleEventType = "booking_created"
	ScheduleEventBookingRescheduled   ScheduleEventType = "booking_rescheduled"
	ScheduleEventBookingStatusChanged ScheduleEventType = "booking_status_changed"
	ScheduleEventBookingDeleted       ScheduleEventType = "booking_deleted"
	ScheduleEventAvailabilityChanged  ScheduleEventType = "availability_changed"
)

// ScheduleEvent is emitted after a successful mutation so other tabs and
// instances can refresh their slot lists.
type ScheduleEvent struct {
	ID            string                 `json:"id"`
	ProviderID    string                 `json:"provider_id"`
	BookingID     string                 `json:"booking_id,omitempty"`
	Date          Date                   `json:"date,omitempty"`
	EventType     ScheduleEventType      `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewScheduleEvent creates a new schedule event
func NewScheduleEvent(providerID string, eventType ScheduleEventType, changedFields map[string]interface{}) *ScheduleEvent {
	return &ScheduleEvent{
		ID:            uuid.New().String(),
		ProviderID:    providerID,
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
	}
}

// NewBookingEvent creates a schedule event describing a booking mutation
func NewBookingEvent(b *Booking, eventType ScheduleEventType, changedFields map[string]interface{}) *ScheduleEvent {
	event := NewScheduleEvent(b.ProviderID, eventType, changedFields)
	event.BookingID = b.ID
	event.Date = b.Date
	return event
}
