package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// AvailabilityService owns provider templates and resolves bookable slots
type AvailabilityService struct {
	scheduler
	providerRepo repositories.ProviderRepository
	serviceRepo  repositories.ServiceRepository
	bookingRepo  repositories.BookingRepository
}

// NewAvailabilityService creates a new availability service. eventBus and metrics may be nil.
func NewAvailabilityService(
	providerRepo repositories.ProviderRepository,
	serviceRepo repositories.ServiceRepository,
	bookingRepo repositories.BookingRepository,
	locker providers.SlotLocker,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *AvailabilityService {
	return &AvailabilityService{
		scheduler: scheduler{
			locker:   locker,
			eventBus: eventBus,
			metrics:  metrics,
		},
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
	}
}

// ListProviders returns the provider directory
func (s *AvailabilityService) ListProviders(ctx context.Context) ([]*entities.Provider, error) {
	return s.providerRepo.List(ctx)
}

// GetProvider returns one provider
func (s *AvailabilityService) GetProvider(ctx context.Context, id string) (*entities.Provider, error) {
	return s.providerRepo.GetByID(ctx, id)
}

// ListActiveServices returns the bookable service catalog
func (s *AvailabilityService) ListActiveServices(ctx context.Context) ([]*entities.Service, error) {
	return s.serviceRepo.ListActive(ctx)
}

// SetDayException toggles date in the provider's exception dates
func (s *AvailabilityService) SetDayException(ctx context.Context, providerID string, date entities.Date) (provider *entities.Provider, err error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.SetDayException")
	span.SetAttributes(attribute.String("provider.id", providerID), attribute.String("date", date.String()))
	defer func() { s.finish(ctx, span, "set_day_exception", err) }()

	if date.IsZero() {
		return nil, apperrors.NewValidationError("date is required")
	}

	release, err := s.acquire(ctx, providers.LockPrefixProvider, providerID)
	if err != nil {
		return nil, err
	}
	defer release()

	provider, err = s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	isException := provider.ToggleException(date)
	if err := s.providerRepo.Save(ctx, provider); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("provider_id", providerID).
		Str("date", date.String()).
		Bool("is_exception", isException).
		Msg("toggled provider exception date")

	event := entities.NewScheduleEvent(providerID, entities.ScheduleEventAvailabilityChanged, map[string]interface{}{
		"exception_date": date.String(),
		"is_exception":   isException,
	})
	event.Date = date
	s.publish(ctx, event)

	return provider, nil
}

// SetWeeklySlot toggles slot in the provider's template for weekday
func (s *AvailabilityService) SetWeeklySlot(ctx context.Context, providerID string, weekday time.Weekday, slot entities.Slot) (provider *entities.Provider, err error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.SetWeeklySlot")
	span.SetAttributes(attribute.String("provider.id", providerID), attribute.String("weekday", weekday.String()), attribute.String("slot", string(slot)))
	defer func() { s.finish(ctx, span, "set_weekly_slot", err) }()

	if weekday < time.Sunday || weekday > time.Saturday {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid weekday %d", weekday))
	}
	slot, err = normalizeSlot(slot)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, providers.LockPrefixProvider, providerID)
	if err != nil {
		return nil, err
	}
	defer release()

	provider, err = s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	offered := provider.ToggleWeeklySlot(weekday, slot)
	if err := s.providerRepo.Save(ctx, provider); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("provider_id", providerID).
		Str("weekday", weekday.String()).
		Str("slot", string(slot)).
		Bool("offered", offered).
		Msg("toggled provider weekly slot")

	s.publish(ctx, entities.NewScheduleEvent(providerID, entities.ScheduleEventAvailabilityChanged, map[string]interface{}{
		"weekday": weekday.String(),
		"slot":    string(slot),
		"offered": offered,
	}))

	return provider, nil
}

// ListAvailableSlots resolves every grid slot of date for one provider
func (s *AvailabilityService) ListAvailableSlots(ctx context.Context, providerID string, date entities.Date) ([]entities.SlotAvailability, error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.ListAvailableSlots")
	defer span.End()
	span.SetAttributes(attribute.String("provider.id", providerID), attribute.String("date", date.String()))

	if date.IsZero() {
		return nil, apperrors.NewValidationError("date is required")
	}

	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	grid := entities.DefaultGrid()
	result := make([]entities.SlotAvailability, len(grid))

	if provider.IsOff(date) {
		for i, slot := range grid {
			result[i] = entities.SlotAvailability{Slot: slot, IsAvailable: false, IsBooked: true, Blocked: true}
		}
		return result, nil
	}

	taken, err := s.takenSlots(ctx, repositories.BookingFilter{ProviderID: providerID, Date: &date})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	template := provider.WeeklyTemplate.Slots(date.Weekday())
	for i, slot := range grid {
		booked := taken.Has(slot)
		result[i] = entities.SlotAvailability{
			Slot:        slot,
			IsAvailable: template.Has(slot) && !booked,
			IsBooked:    booked,
		}
	}
	return result, nil
}

// ListOpenSlotsIgnoringProviderTemplate reports, for date, which grid slots no
// active booking of any provider holds. Templates and exceptions are not consulted.
func (s *AvailabilityService) ListOpenSlotsIgnoringProviderTemplate(ctx context.Context, date entities.Date) ([]entities.SlotAvailability, error) {
	ctx, span := observability.StartSpan(ctx, "AvailabilityService.ListOpenSlotsIgnoringProviderTemplate")
	defer span.End()
	span.SetAttributes(attribute.String("date", date.String()))

	if date.IsZero() {
		return nil, apperrors.NewValidationError("date is required")
	}

	taken, err := s.takenSlots(ctx, repositories.BookingFilter{Date: &date})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	grid := entities.DefaultGrid()
	result := make([]entities.SlotAvailability, len(grid))
	for i, slot := range grid {
		booked := taken.Has(slot)
		result[i] = entities.SlotAvailability{Slot: slot, IsAvailable: !booked, IsBooked: booked}
	}
	return result, nil
}

func (s *AvailabilityService) takenSlots(ctx context.Context, filter repositories.BookingFilter) (entities.SlotSet, error) {
	filter.Statuses = entities.ActiveBookingStatuses
	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	taken := make(entities.SlotSet, len(bookings))
	for _, b := range bookings {
		taken[b.StartTime] = struct{}{}
	}
	return taken, nil
}
