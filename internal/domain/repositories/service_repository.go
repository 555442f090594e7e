package repositories

import (
	"context"

	"github.com/zatekoja/carebook/internal/domain/entities"
)

// ServiceRepository is the service catalog
type ServiceRepository interface {
	// GetByID retrieves a service by ID, active or not
	GetByID(ctx context.Context, id string) (*entities.Service, error)

	// ListActive retrieves the active services ordered by name
	ListActive(ctx context.Context) ([]*entities.Service, error)

	// Save creates or replaces a service
	Save(ctx context.Context, service *entities.Service) error
}
