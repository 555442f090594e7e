package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/memory"
	"github.com/zatekoja/carebook/internal/domain/entities"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

func TestProviderAdapter_SaveIsolatesCallerCopy(t *testing.T) {
	ctx := context.Background()
	p := &entities.Provider{ID: "A", Name: "Dr. A"}
	p.ToggleWeeklySlot(time.Monday, "09:00")
	dir := memory.NewProviderAdapter(p)

	p.ToggleWeeklySlot(time.Monday, "09:30")

	stored, err := dir.GetByID(ctx, "A")
	require.NoError(t, err)
	assert.False(t, stored.WeeklyTemplate.Slots(time.Monday).Has("09:30"))

	stored.ToggleWeeklySlot(time.Monday, "10:00")
	require.NoError(t, dir.Save(ctx, stored))

	reloaded, err := dir.GetByID(ctx, "A")
	require.NoError(t, err)
	assert.True(t, reloaded.WeeklyTemplate.Slots(time.Monday).Has("10:00"))
	assert.False(t, reloaded.UpdatedAt.IsZero())
}

func TestProviderAdapter_ListAndNotFound(t *testing.T) {
	ctx := context.Background()
	dir := memory.NewProviderAdapter(
		&entities.Provider{ID: "b", Name: "Dr. B"},
		&entities.Provider{ID: "a", Name: "Dr. A"},
	)

	all, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dr. A", all[0].Name)

	_, err = dir.GetByID(ctx, "zzz")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestServiceAdapter_ListActive(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewServiceAdapter(
		&entities.Service{ID: "S1", Name: "Consultation", DurationMinutes: 30, IsActive: true},
		&entities.Service{ID: "S2", Name: "Archived", DurationMinutes: 15, IsActive: false},
	)

	active, err := catalog.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "S1", active[0].ID)

	inactive, err := catalog.GetByID(ctx, "S2")
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
}
