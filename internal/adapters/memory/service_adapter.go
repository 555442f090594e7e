package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/repositories"
	apperrors "github.com/zatekoja/carebook/pkg/errors"
)

// ServiceAdapter is an in-process service catalog
type ServiceAdapter struct {
	mu       sync.RWMutex
	services map[string]entities.Service
}

// NewServiceAdapter creates a catalog holding the given services
func NewServiceAdapter(seed ...*entities.Service) *ServiceAdapter {
	a := &ServiceAdapter{services: make(map[string]entities.Service, len(seed))}
	for _, s := range seed {
		a.services[s.ID] = *s
	}
	return a
}

var _ repositories.ServiceRepository = (*ServiceAdapter)(nil)

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.services[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
	}
	return &s, nil
}

// ListActive retrieves the active services ordered by name
func (a *ServiceAdapter) ListActive(ctx context.Context) ([]*entities.Service, error) {
	a.mu.RLock()
	out := make([]*entities.Service, 0, len(a.services))
	for _, s := range a.services {
		if s.IsActive {
			s := s
			out = append(out, &s)
		}
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Save creates or replaces a service
func (a *ServiceAdapter) Save(ctx context.Context, service *entities.Service) error {
	if service.ID == "" {
		return apperrors.NewValidationError("service id is required")
	}
	a.mu.Lock()
	a.services[service.ID] = *service
	a.mu.Unlock()
	return nil
}
