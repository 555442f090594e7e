package repositories

import (
	"context"

	"github.com/zatekoja/carebook/internal/domain/entities"
)

// ProviderRepository is the provider directory
type ProviderRepository interface {
	// GetByID retrieves a provider by ID
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// List retrieves all providers ordered by name
	List(ctx context.Context) ([]*entities.Provider, error)

	// Save creates or replaces a provider
	Save(ctx context.Context, provider *entities.Provider) error
}
