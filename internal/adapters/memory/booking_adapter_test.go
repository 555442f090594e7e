package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/memory"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

func newBooking(id, start string, status entities.BookingStatus) *entities.Booking {
	return &entities.Booking{
		ID:         id,
		ProviderID: "A",
		Date:       entities.MustParseDate("2024-05-06"),
		StartTime:  entities.Slot(start),
		Status:     status,
	}
}

func TestBookingAdapter_CreateRejectsSecondActiveBooking(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()

	require.NoError(t, ledger.Create(ctx, newBooking("b1", "09:00", entities.BookingStatusPending)))

	err := ledger.Create(ctx, newBooking("b2", "09:00", entities.BookingStatusPending))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSlotTaken))

	// A cancelled record never holds the slot.
	require.NoError(t, ledger.Create(ctx, newBooking("b3", "09:00", entities.BookingStatusCancelled)))
}

func TestBookingAdapter_UpdateReleasesOldSlot(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()
	require.NoError(t, ledger.Create(ctx, newBooking("b1", "09:00", entities.BookingStatusPending)))

	moved := newBooking("b1", "09:30", entities.BookingStatusPending)
	require.NoError(t, ledger.Update(ctx, moved))

	old := newBooking("b1", "09:00", entities.BookingStatusPending).Key()
	holder, err := ledger.FindActiveAt(ctx, old, "")
	require.NoError(t, err)
	assert.Nil(t, holder)

	holder, err = ledger.FindActiveAt(ctx, moved.Key(), "")
	require.NoError(t, err)
	require.NotNil(t, holder)
	assert.Equal(t, "b1", holder.ID)

	holder, err = ledger.FindActiveAt(ctx, moved.Key(), "b1")
	require.NoError(t, err)
	assert.Nil(t, holder)
}

func TestBookingAdapter_CancelFreesSlot(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()
	b := newBooking("b1", "09:00", entities.BookingStatusPending)
	require.NoError(t, ledger.Create(ctx, b))

	b.Status = entities.BookingStatusCancelled
	require.NoError(t, ledger.Update(ctx, b))

	require.NoError(t, ledger.Create(ctx, newBooking("b2", "09:00", entities.BookingStatusPending)))
}

func TestBookingAdapter_UpdateIntoTakenSlot(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()
	require.NoError(t, ledger.Create(ctx, newBooking("b1", "09:00", entities.BookingStatusPending)))
	require.NoError(t, ledger.Create(ctx, newBooking("b2", "09:30", entities.BookingStatusPending)))

	err := ledger.Update(ctx, newBooking("b2", "09:00", entities.BookingStatusPending))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSlotTaken))

	stored, err := ledger.GetByID(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, entities.Slot("09:30"), stored.StartTime)
}

func TestBookingAdapter_GetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()
	require.NoError(t, ledger.Create(ctx, newBooking("b1", "09:00", entities.BookingStatusPending)))

	got, err := ledger.GetByID(ctx, "b1")
	require.NoError(t, err)
	got.Status = entities.BookingStatusCancelled

	again, err := ledger.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusPending, again.Status)
}

func TestBookingAdapter_DeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()
	require.NoError(t, ledger.Create(ctx, newBooking("b1", "09:00", entities.BookingStatusPending)))

	require.NoError(t, ledger.Delete(ctx, "b1"))

	_, err := ledger.GetByID(ctx, "b1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.True(t, apperrors.IsType(ledger.Delete(ctx, "b1"), apperrors.ErrorTypeNotFound))
	require.NoError(t, ledger.Create(ctx, newBooking("b2", "09:00", entities.BookingStatusPending)))
}

func TestBookingAdapter_ListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewBookingAdapter()
	require.NoError(t, ledger.Create(ctx, newBooking("late", "10:00", entities.BookingStatusConfirmed)))
	require.NoError(t, ledger.Create(ctx, newBooking("early", "06:30", entities.BookingStatusPending)))
	require.NoError(t, ledger.Create(ctx, newBooking("gone", "08:00", entities.BookingStatusCancelled)))
	other := newBooking("other", "07:00", entities.BookingStatusPending)
	other.ProviderID = "B"
	require.NoError(t, ledger.Create(ctx, other))

	day := entities.MustParseDate("2024-05-06")
	got, err := ledger.List(ctx, repositories.BookingFilter{
		ProviderID: "A",
		Date:       &day,
		Statuses:   entities.ActiveBookingStatuses,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)

	paged, err := ledger.List(ctx, repositories.BookingFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
}
