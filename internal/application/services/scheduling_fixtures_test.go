package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/carebook/internal/adapters/events"
	"github.com/zatekoja/carebook/internal/adapters/locks"
	"github.com/zatekoja/carebook/internal/adapters/memory"
	"github.com/zatekoja/carebook/internal/application/services"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
	"github.com/zatekoja/carebook/internal/domain/repositories"
)

// Monday 2024-05-06
var monday = entities.MustParseDate("2024-05-06")

type fixture struct {
	providers    *memory.ProviderAdapter
	services     *memory.ServiceAdapter
	bookings     *memory.BookingAdapter
	bus          providers.EventBus
	availability *services.AvailabilityService
	booking      *services.BookingService
}

func drA() *entities.Provider {
	p := &entities.Provider{ID: "A", Name: "Dr. A", Specialty: "General"}
	p.ToggleWeeklySlot(time.Monday, "09:00")
	p.ToggleWeeklySlot(time.Monday, "09:30")
	return p
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		providers: memory.NewProviderAdapter(drA(), &entities.Provider{ID: "B", Name: "Dr. B"}),
		services: memory.NewServiceAdapter(
			&entities.Service{ID: "S1", Name: "Consultation", DurationMinutes: 30, Price: 40, IsActive: true},
			&entities.Service{ID: "S2", Name: "Retired", DurationMinutes: 15, IsActive: false},
		),
		bookings: memory.NewBookingAdapter(),
		bus:      events.NewMemoryEventBus(),
	}
	t.Cleanup(func() { _ = f.bus.Close() })

	locker := locks.NewKeyedMutex()
	f.availability = services.NewAvailabilityService(f.providers, f.services, f.bookings, locker, f.bus, nil)
	f.booking = services.NewBookingService(f.bookings, f.providers, f.services, locker, f.bus, nil)
	return f
}

func janeAt(slot string) services.CreateBookingRequest {
	return services.CreateBookingRequest{
		ProviderID: "A",
		ServiceID:  "S1",
		Date:       monday,
		StartTime:  entities.Slot(slot),
		ClientName: "Jane",
	}
}

// MockBookingRepository lets tests inject ledger failures
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *entities.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) FindActiveAt(ctx context.Context, key entities.SlotKey, excludeID string) (*entities.Booking, error) {
	args := m.Called(ctx, key, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}
