package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carebook/internal/adapters/database"
	"github.com/zatekoja/carebook/internal/domain/entities"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

var providerRowColumns = []string{"id", "name", "specialty", "weekly_template", "exception_dates", "created_at", "updated_at"}

func TestProviderAdapter_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes JSONB columns", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := database.NewProviderAdapter(client)
		now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(providerRowColumns).AddRow(
			"dr-a", "Dr. A", "Dermatology",
			[]byte(`{"Monday":["09:00","09:30"]}`),
			[]byte(`["2024-05-13"]`),
			now, now,
		)
		mock.ExpectQuery(`SELECT .* FROM "providers" WHERE \("id" = 'dr-a'\)`).WillReturnRows(rows)

		p, err := adapter.GetByID(ctx, "dr-a")
		require.NoError(t, err)
		assert.Equal(t, "Dr. A", p.Name)
		assert.True(t, p.Works(entities.MustParseDate("2024-05-06"), "09:30"))
		assert.False(t, p.Works(entities.MustParseDate("2024-05-07"), "09:30"))
		assert.True(t, p.IsOff(entities.MustParseDate("2024-05-13")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows is not found", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := database.NewProviderAdapter(client)

		mock.ExpectQuery(`SELECT .* FROM "providers"`).WillReturnError(sql.ErrNoRows)

		_, err := adapter.GetByID(ctx, "nobody")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestProviderAdapter_List(t *testing.T) {
	ctx := context.Background()
	client, mock := newMockClient(t)
	adapter := database.NewProviderAdapter(client)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(providerRowColumns).
		AddRow("dr-a", "Dr. A", "", []byte(`{}`), []byte(`[]`), now, now).
		AddRow("dr-b", "Dr. B", "", []byte(`{"Friday":["14:00"]}`), []byte(`[]`), now, now)
	mock.ExpectQuery(`SELECT .* FROM "providers" ORDER BY "name" ASC, "id" ASC`).WillReturnRows(rows)

	providers, err := adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, "dr-b", providers[1].ID)
	assert.NotNil(t, providers[0].ExceptionDates)
}

func TestProviderAdapter_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts on id", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := database.NewProviderAdapter(client)

		p := &entities.Provider{ID: "dr-a", Name: "Dr. A"}
		p.ToggleWeeklySlot(time.Monday, "09:00")
		p.ToggleException(entities.MustParseDate("2024-05-13"))

		mock.ExpectExec(`INSERT INTO "providers" .* ON CONFLICT \(id\) DO UPDATE SET .*EXCLUDED.weekly_template`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, adapter.Save(ctx, p))
		assert.False(t, p.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires an id", func(t *testing.T) {
		client, _ := newMockClient(t)
		adapter := database.NewProviderAdapter(client)

		err := adapter.Save(ctx, &entities.Provider{Name: "anonymous"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestServiceAdapter_ListActive(t *testing.T) {
	ctx := context.Background()
	client, mock := newMockClient(t)
	adapter := database.NewServiceAdapter(client)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "duration_minutes", "price", "is_active", "created_at", "updated_at"}).
		AddRow("svc-1", "Consultation", 30, 50.0, true, now, now)
	mock.ExpectQuery(`SELECT .* FROM "services" WHERE \("is_active" IS TRUE\)`).WillReturnRows(rows)

	services, err := adapter.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, 30, services[0].DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceAdapter_Save(t *testing.T) {
	ctx := context.Background()
	client, mock := newMockClient(t)
	adapter := database.NewServiceAdapter(client)

	mock.ExpectExec(`INSERT INTO "services" .* ON CONFLICT \(id\) DO UPDATE`).WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, adapter.Save(ctx, &entities.Service{ID: "svc-1", Name: "Consultation", DurationMinutes: 30, IsActive: true}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
