package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/carebook/internal/domain/entities"
)

func TestBookingStatus_Transitions(t *testing.T) {
	all := []entities.BookingStatus{
		entities.BookingStatusPending,
		entities.BookingStatusConfirmed,
		entities.BookingStatusCompleted,
		entities.BookingStatusCancelled,
	}
	allowed := map[[2]entities.BookingStatus]bool{
		{entities.BookingStatusPending, entities.BookingStatusConfirmed}:   true,
		{entities.BookingStatusPending, entities.BookingStatusCompleted}:   true,
		{entities.BookingStatusPending, entities.BookingStatusCancelled}:   true,
		{entities.BookingStatusConfirmed, entities.BookingStatusCompleted}: true,
		{entities.BookingStatusConfirmed, entities.BookingStatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]entities.BookingStatus{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestBookingStatus_Flags(t *testing.T) {
	assert.True(t, entities.BookingStatusCompleted.IsActive())
	assert.False(t, entities.BookingStatusCancelled.IsActive())
	assert.True(t, entities.BookingStatusCancelled.IsTerminal())
	assert.False(t, entities.BookingStatusConfirmed.IsTerminal())
}

func TestParseBookingStatus(t *testing.T) {
	status, ok := entities.ParseBookingStatus(" Confirmed ")
	assert.True(t, ok)
	assert.Equal(t, entities.BookingStatusConfirmed, status)

	_, ok = entities.ParseBookingStatus("archived")
	assert.False(t, ok)
}
