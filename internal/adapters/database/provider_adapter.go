package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

const providersTable = "providers"

var providerColumns = []interface{}{
	"id", "name", "specialty", "weekly_template", "exception_dates", "created_at", "updated_at",
}

// ProviderAdapter implements the ProviderRepository interface on PostgreSQL.
// The weekly template and exception dates are stored as JSONB.
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From(providersTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider, err := scanProvider(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}
	return provider, nil
}

// List retrieves all providers ordered by name
func (a *ProviderAdapter) List(ctx context.Context) ([]*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From(providersTable).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list providers", err)
	}
	defer rows.Close()

	providers := make([]*entities.Provider, 0)
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate providers", err)
	}

	return providers, nil
}

// Save inserts or replaces a provider
func (a *ProviderAdapter) Save(ctx context.Context, provider *entities.Provider) error {
	if provider.ID == "" {
		return apperrors.NewValidationError("provider id is required")
	}

	template, err := json.Marshal(provider.WeeklyTemplate)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal weekly template", err)
	}
	exceptions, err := json.Marshal(provider.ExceptionDates)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal exception dates", err)
	}

	now := utcNow()
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = now
	}
	provider.UpdatedAt = now

	record := goqu.Record{
		"id":              provider.ID,
		"name":            provider.Name,
		"specialty":       provider.Specialty,
		"weekly_template": string(template),
		"exception_dates": string(exceptions),
		"created_at":      provider.CreatedAt,
		"updated_at":      provider.UpdatedAt,
	}

	query, args, err := a.db.Insert(providersTable).
		Rows(record).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"name":            goqu.L("EXCLUDED.name"),
			"specialty":       goqu.L("EXCLUDED.specialty"),
			"weekly_template": goqu.L("EXCLUDED.weekly_template"),
			"exception_dates": goqu.L("EXCLUDED.exception_dates"),
			"updated_at":      goqu.L("EXCLUDED.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save provider", err)
	}
	return nil
}

func scanProvider(row rowScanner) (*entities.Provider, error) {
	provider := &entities.Provider{}
	var template, exceptions []byte

	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&provider.Specialty,
		&template,
		&exceptions,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	provider.WeeklyTemplate = entities.WeeklyTemplate{}
	if len(template) > 0 {
		if err := json.Unmarshal(template, &provider.WeeklyTemplate); err != nil {
			return nil, fmt.Errorf("decode weekly_template: %w", err)
		}
	}
	provider.ExceptionDates = entities.DateSet{}
	if len(exceptions) > 0 {
		if err := json.Unmarshal(exceptions, &provider.ExceptionDates); err != nil {
			return nil, fmt.Errorf("decode exception_dates: %w", err)
		}
	}
	return provider, nil
}
