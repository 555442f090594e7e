package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
	"github.com/zatekoja/carebook/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// lockTimeout caps a single lock acquisition when the caller's context has no deadline.
const lockTimeout = 5 * time.Second

// scheduler holds the collaborators shared by the availability and booking services.
type scheduler struct {
	locker   providers.SlotLocker
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// acquire takes prefix+id on the locker and records the wait.
func (s *scheduler) acquire(ctx context.Context, prefix, id string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lockTimeout)
		defer cancel()
	}

	start := time.Now()
	release, err := s.locker.Acquire(ctx, prefix+id)
	observability.RecordLockWait(ctx, s.metrics, prefix, time.Since(start))
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to acquire lock %s%s", prefix, id), err)
	}
	return release, nil
}

// publish fans event out to the global and provider channels. The mutation is
// already committed, so failures are logged and swallowed.
func (s *scheduler) publish(ctx context.Context, event *entities.ScheduleEvent) {
	if s.eventBus == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)
	for _, channel := range []string{providers.EventChannelScheduleUpdates, providers.GetProviderChannel(event.ProviderID)} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", channel).Str("event_type", string(event.EventType)).Msg("failed to publish schedule event")
		}
	}
}

// finish closes span for a mutation and counts its outcome.
func (s *scheduler) finish(ctx context.Context, span trace.Span, operation string, err error) {
	outcome := apperrors.OutcomeOf(err)
	observability.RecordBookingOutcome(ctx, s.metrics, operation, string(outcome))

	logger := observability.LoggerFromContext(ctx)
	switch outcome {
	case apperrors.OutcomeSuccess:
		span.SetStatus(codes.Ok, "")
	case apperrors.OutcomeInternalError:
		observability.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Str("operation", operation).Msg("scheduling operation failed")
	default:
		observability.RecordError(span, err)
		logger.Info().Str("operation", operation).Str("outcome", string(outcome)).Msg(err.Error())
	}
	span.End()
}

// normalizeSlot parses s and requires it to be on the default grid.
func normalizeSlot(s entities.Slot) (entities.Slot, error) {
	slot, err := entities.ParseSlot(string(s))
	if err != nil || !entities.IsGridSlot(slot) {
		return "", apperrors.NewValidationError(fmt.Sprintf("start time %q is not a bookable slot", string(s)))
	}
	return slot, nil
}

// checkProviderWorks runs the exception and template checks for a slot.
func checkProviderWorks(p *entities.Provider, date entities.Date, slot entities.Slot) error {
	if p.IsOff(date) {
		return apperrors.NewProviderUnavailableError(fmt.Sprintf("%s is not available on %s", p.Name, date))
	}
	if !p.Works(date, slot) {
		return apperrors.NewProviderUnavailableError(fmt.Sprintf("%s does not work %s at %s", p.Name, date.Weekday(), slot))
	}
	return nil
}
