package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// CreateBookingRequest carries the inputs of a new booking
type CreateBookingRequest struct {
	ProviderID string        `json:"provider_id"`
	ServiceID  string        `json:"service_id"`
	Date       entities.Date `json:"date"`
	StartTime  entities.Slot `json:"start_time"`
	ClientName string        `json:"client_name"`
	Notes      string        `json:"notes,omitempty"`
}

// RescheduleRequest moves a booking. A zero Date or empty StartTime keeps the
// current value; nil ClientName and Notes are left unchanged.
type RescheduleRequest struct {
	Date       entities.Date `json:"date"`
	StartTime  entities.Slot `json:"start_time"`
	ClientName *string       `json:"client_name,omitempty"`
	Notes      *string       `json:"notes,omitempty"`
}

// BookingService commits bookings and governs their lifecycle
type BookingService struct {
	scheduler
	bookingRepo  repositories.BookingRepository
	providerRepo repositories.ProviderRepository
	serviceRepo  repositories.ServiceRepository
	now          func() time.Time
}

// NewBookingService creates a new booking service. eventBus and metrics may be nil.
func NewBookingService(
	bookingRepo repositories.BookingRepository,
	providerRepo repositories.ProviderRepository,
	serviceRepo repositories.ServiceRepository,
	locker providers.SlotLocker,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *BookingService {
	return &BookingService{
		scheduler: scheduler{
			locker:   locker,
			eventBus: eventBus,
			metrics:  metrics,
		},
		bookingRepo:  bookingRepo,
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking validates req and commits a pending booking. The active-slot
// re-check and the insert run under the slot lock.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (booking *entities.Booking, err error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.CreateBooking")
	span.SetAttributes(
		attribute.String("provider.id", req.ProviderID),
		attribute.String("date", req.Date.String()),
		attribute.String("slot", string(req.StartTime)),
	)
	defer func() { s.finish(ctx, span, "create", err) }()

	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		return nil, apperrors.NewValidationError("client name is required")
	}
	if req.Date.IsZero() {
		return nil, apperrors.NewValidationError("date is required")
	}

	provider, service, err := s.loadProviderAndService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	slot, err := normalizeSlot(req.StartTime)
	if err != nil {
		return nil, err
	}

	if err := checkProviderWorks(provider, req.Date, slot); err != nil {
		return nil, err
	}

	key := entities.SlotKey{ProviderID: provider.ID, Date: req.Date, StartTime: slot}
	release, err := s.acquire(ctx, providers.LockPrefixSlot, key.String())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureSlotFree(ctx, key, ""); err != nil {
		return nil, err
	}

	now := s.now()
	booking = &entities.Booking{
		ID:              uuid.New().String(),
		Code:            newBookingCode(),
		ClientName:      clientName,
		ProviderID:      provider.ID,
		ProviderName:    provider.Name,
		ServiceID:       service.ID,
		ServiceName:     service.Name,
		DurationMinutes: service.DurationMinutes,
		Date:            req.Date,
		StartTime:       slot,
		Status:          entities.BookingStatusPending,
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("booking_id", booking.ID).
		Str("code", booking.Code).
		Str("slot_key", key.String()).
		Msg("booking created")

	s.publish(ctx, entities.NewBookingEvent(booking, entities.ScheduleEventBookingCreated, map[string]interface{}{
		"start_time": string(booking.StartTime),
		"status":     string(booking.Status),
	}))

	return booking, nil
}

// UpdateBooking reschedules a booking, re-running every create check against
// the target slot while ignoring the booking's own current slot.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, req RescheduleRequest) (booking *entities.Booking, err error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.UpdateBooking")
	span.SetAttributes(attribute.String("booking.id", id))
	defer func() { s.finish(ctx, span, "reschedule", err) }()

	release, err := s.acquire(ctx, providers.LockPrefixBooking, id)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf("booking %s is %s and cannot be rescheduled", booking.Code, booking.Status))
	}

	date := booking.Date
	if !req.Date.IsZero() {
		date = req.Date
	}
	startTime := booking.StartTime
	if req.StartTime != "" {
		startTime = req.StartTime
	}

	clientName := booking.ClientName
	if req.ClientName != nil {
		clientName = strings.TrimSpace(*req.ClientName)
		if clientName == "" {
			return nil, apperrors.NewValidationError("client name is required")
		}
	}

	provider, _, err := s.loadProviderAndService(ctx, booking.ProviderID, booking.ServiceID)
	if err != nil {
		return nil, err
	}

	slot, err := normalizeSlot(startTime)
	if err != nil {
		return nil, err
	}

	if err := checkProviderWorks(provider, date, slot); err != nil {
		return nil, err
	}

	key := entities.SlotKey{ProviderID: booking.ProviderID, Date: date, StartTime: slot}
	releaseSlot, err := s.acquire(ctx, providers.LockPrefixSlot, key.String())
	if err != nil {
		return nil, err
	}
	defer releaseSlot()

	if err := s.ensureSlotFree(ctx, key, booking.ID); err != nil {
		return nil, err
	}

	changed := map[string]interface{}{}
	if date != booking.Date {
		changed["previous_date"] = booking.Date.String()
		changed["date"] = date.String()
	}
	if slot != booking.StartTime {
		changed["previous_start_time"] = string(booking.StartTime)
		changed["start_time"] = string(slot)
	}

	booking.Date = date
	booking.StartTime = slot
	booking.ClientName = clientName
	if req.Notes != nil {
		booking.Notes = strings.TrimSpace(*req.Notes)
	}
	booking.UpdatedAt = s.now()

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("booking_id", booking.ID).
		Str("slot_key", key.String()).
		Msg("booking rescheduled")

	s.publish(ctx, entities.NewBookingEvent(booking, entities.ScheduleEventBookingRescheduled, changed))

	return booking, nil
}

// SetStatus moves a booking along the status state machine
func (s *BookingService) SetStatus(ctx context.Context, id string, status entities.BookingStatus) (booking *entities.Booking, err error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.SetStatus")
	span.SetAttributes(attribute.String("booking.id", id), attribute.String("status", string(status)))
	defer func() { s.finish(ctx, span, "set_status", err) }()

	if _, ok := entities.ParseBookingStatus(string(status)); !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown booking status %q", string(status)))
	}

	release, err := s.acquire(ctx, providers.LockPrefixBooking, id)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := booking.Status
	if !previous.CanTransitionTo(status) {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf("cannot change booking %s from %s to %s", booking.Code, previous, status))
	}

	booking.Status = status
	booking.UpdatedAt = s.now()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("booking_id", booking.ID).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("booking status changed")

	s.publish(ctx, entities.NewBookingEvent(booking, entities.ScheduleEventBookingStatusChanged, map[string]interface{}{
		"previous_status": string(previous),
		"status":          string(status),
	}))

	return booking, nil
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id string) (*entities.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListBookings lists bookings matching filter
func (s *BookingService) ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.NewValidationError("limit and offset must not be negative")
	}
	return s.bookingRepo.List(ctx, filter)
}

// DeleteBooking physically removes a booking. This is an administrative
// operation outside the status state machine.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.DeleteBooking")
	span.SetAttributes(attribute.String("booking.id", id))
	defer func() { s.finish(ctx, span, "delete", err) }()

	release, err := s.acquire(ctx, providers.LockPrefixBooking, id)
	if err != nil {
		return err
	}
	defer release()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().Str("booking_id", id).Msg("booking deleted")
	s.publish(ctx, entities.NewBookingEvent(booking, entities.ScheduleEventBookingDeleted, nil))
	return nil
}

// loadProviderAndService resolves both ids and requires the service to be active.
func (s *BookingService) loadProviderAndService(ctx context.Context, providerID, serviceID string) (*entities.Provider, *entities.Service, error) {
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, nil, err
	}
	service, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, nil, err
	}
	if !service.IsActive {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("service %s is not active", serviceID))
	}
	return provider, service, nil
}

func (s *BookingService) ensureSlotFree(ctx context.Context, key entities.SlotKey, excludeID string) error {
	holder, err := s.bookingRepo.FindActiveAt(ctx, key, excludeID)
	if err != nil {
		return err
	}
	if holder != nil {
		return apperrors.NewSlotTakenError(fmt.Sprintf("%s at %s on %s is already booked", holder.ProviderName, key.StartTime, key.Date))
	}
	return nil
}

func newBookingCode() string {
	return "BK-" + strings.ToUpper(uuid.New().String()[:8])
}
