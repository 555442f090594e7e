package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

const (
	bookingsTable = "bookings"

	// uniqueViolation is the SQLSTATE raised by bookings_active_slot_idx.
	uniqueViolation = "23505"
)

var bookingColumns = []interface{}{
	"id", "code", "client_name", "provider_id", "provider_name",
	"service_id", "service_name", "duration_minutes", "date", "start_time",
	"status", "notes", "created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface on PostgreSQL.
// Active uniqueness is enforced by the partial unique index on
// (provider_id, date, start_time) WHERE status <> 'cancelled'.
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new booking
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	record := goqu.Record{
		"id":               booking.ID,
		"code":             booking.Code,
		"client_name":      booking.ClientName,
		"provider_id":      booking.ProviderID,
		"provider_name":    booking.ProviderName,
		"service_id":       booking.ServiceID,
		"service_name":     booking.ServiceName,
		"duration_minutes": booking.DurationMinutes,
		"date":             booking.Date.String(),
		"start_time":       string(booking.StartTime),
		"status":           string(booking.Status),
		"notes":            nullableString(booking.Notes),
		"created_at":       booking.CreatedAt,
		"updated_at":       booking.UpdatedAt,
	}

	query, args, err := a.db.Insert(bookingsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewSlotTakenError(fmt.Sprintf("slot %s is already booked", booking.Key()))
		}
		return apperrors.NewInternalError("failed to create booking", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From(bookingsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}
	return booking, nil
}

// Update updates a booking
func (a *BookingAdapter) Update(ctx context.Context, booking *entities.Booking) error {
	record := goqu.Record{
		"client_name": booking.ClientName,
		"date":        booking.Date.String(),
		"start_time":  string(booking.StartTime),
		"status":      string(booking.Status),
		"notes":       nullableString(booking.Notes),
		"updated_at":  booking.UpdatedAt,
	}

	query, args, err := a.db.Update(bookingsTable).
		Set(record).
		Where(goqu.Ex{"id": booking.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewSlotTakenError(fmt.Sprintf("slot %s is already booked", booking.Key()))
		}
		return apperrors.NewInternalError("failed to update booking", err)
	}

	return expectOneRow(result, "booking", booking.ID)
}

// Delete physically removes a booking
func (a *BookingAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(bookingsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete booking", err)
	}

	return expectOneRow(result, "booking", id)
}

// FindActiveAt returns the active booking holding key, ignoring excludeID
func (a *BookingAdapter) FindActiveAt(ctx context.Context, key entities.SlotKey, excludeID string) (*entities.Booking, error) {
	ds := a.db.Select(bookingColumns...).
		From(bookingsTable).
		Where(
			goqu.Ex{
				"provider_id": key.ProviderID,
				"date":        key.Date.String(),
				"start_time":  string(key.StartTime),
			},
			goqu.C("status").Neq(string(entities.BookingStatusCancelled)),
		).
		Limit(1)
	if excludeID != "" {
		ds = ds.Where(goqu.C("id").Neq(excludeID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up slot", err)
	}
	return booking, nil
}

// List retrieves bookings matching the filter ordered by date and start time
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	ds := a.db.Select(bookingColumns...).From(bookingsTable)

	if filter.ProviderID != "" {
		ds = ds.Where(goqu.Ex{"provider_id": filter.ProviderID})
	}

	if filter.Date != nil {
		ds = ds.Where(goqu.Ex{"date": filter.Date.String()})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		ds = ds.Where(goqu.C("status").In(statuses))
	}

	ds = ds.Order(goqu.I("date").Asc(), goqu.I("start_time").Asc(), goqu.I("created_at").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	bookings := make([]*entities.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate bookings", err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var startTime, status string
	var notes sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.Code,
		&booking.ClientName,
		&booking.ProviderID,
		&booking.ProviderName,
		&booking.ServiceID,
		&booking.ServiceName,
		&booking.DurationMinutes,
		&booking.Date,
		&startTime,
		&status,
		&notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.StartTime = entities.Slot(startTime)
	booking.Status = entities.BookingStatus(status)
	booking.Notes = notes.String
	return booking, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func expectOneRow(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", kind, id))
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
