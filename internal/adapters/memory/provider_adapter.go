package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

// ProviderAdapter is an in-process provider directory
type ProviderAdapter struct {
	mu        sync.RWMutex
	providers map[string]*entities.Provider
}

// NewProviderAdapter creates a directory holding the given providers
func NewProviderAdapter(seed ...*entities.Provider) *ProviderAdapter {
	a := &ProviderAdapter{providers: make(map[string]*entities.Provider, len(seed))}
	for _, p := range seed {
		a.providers[p.ID] = p.Clone()
	}
	return a
}

var _ repositories.ProviderRepository = (*ProviderAdapter)(nil)

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.providers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	return p.Clone(), nil
}

// List retrieves all providers ordered by name
func (a *ProviderAdapter) List(ctx context.Context) ([]*entities.Provider, error) {
	a.mu.RLock()
	out := make([]*entities.Provider, 0, len(a.providers))
	for _, p := range a.providers {
		out = append(out, p.Clone())
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Save creates or replaces a provider
func (a *ProviderAdapter) Save(ctx context.Context, provider *entities.Provider) error {
	if provider.ID == "" {
		return apperrors.NewValidationError("provider id is required")
	}
	now := time.Now().UTC()
	stored := provider.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	a.mu.Lock()
	a.providers[provider.ID] = stored
	a.mu.Unlock()
	return nil
}
