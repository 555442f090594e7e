package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	"github.com/zatekoja/carebook/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

const servicesTable = "services"

var serviceColumns = []interface{}{
	"id", "name", "duration_minutes", "price", "is_active", "created_at", "updated_at",
}

// ServiceAdapter implements the ServiceRepository interface on PostgreSQL
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a service by ID, active or not
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	query, args, err := a.db.Select(serviceColumns...).
		From(servicesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service, err := scanService(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}
	return service, nil
}

// ListActive retrieves active services ordered by name
func (a *ServiceAdapter) ListActive(ctx context.Context) ([]*entities.Service, error) {
	query, args, err := a.db.Select(serviceColumns...).
		From(servicesTable).
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	defer rows.Close()

	services := make([]*entities.Service, 0)
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate services", err)
	}

	return services, nil
}

// Save inserts or replaces a service
func (a *ServiceAdapter) Save(ctx context.Context, service *entities.Service) error {
	if service.ID == "" {
		return apperrors.NewValidationError("service id is required")
	}

	now := utcNow()
	if service.CreatedAt.IsZero() {
		service.CreatedAt = now
	}
	service.UpdatedAt = now

	query, args, err := a.db.Insert(servicesTable).
		Rows(goqu.Record{
			"id":               service.ID,
			"name":             service.Name,
			"duration_minutes": service.DurationMinutes,
			"price":            service.Price,
			"is_active":        service.IsActive,
			"created_at":       service.CreatedAt,
			"updated_at":       service.UpdatedAt,
		}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"name":             goqu.L("EXCLUDED.name"),
			"duration_minutes": goqu.L("EXCLUDED.duration_minutes"),
			"price":            goqu.L("EXCLUDED.price"),
			"is_active":        goqu.L("EXCLUDED.is_active"),
			"updated_at":       goqu.L("EXCLUDED.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save service", err)
	}
	return nil
}

func scanService(row rowScanner) (*entities.Service, error) {
	service := &entities.Service{}
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.DurationMinutes,
		&service.Price,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return service, nil
}
