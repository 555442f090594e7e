package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/domain/entities"
	"github.com/zatekoja/carebook/internal/domain/providers"
	"github.com/zatekoja/carebook/internal/domain/repositories"
)

// CachedServiceAdapter wraps a ServiceRepository with read-through caching.
// The catalog changes rarely and is read on every booking, so both the active
// list and single lookups are cached; Save invalidates them.
type CachedServiceAdapter struct {
	adapter repositories.ServiceRepository
	cache   providers.CacheProvider
	ttl     int
}

// NewCachedServiceAdapter creates a new cached service adapter
func NewCachedServiceAdapter(adapter repositories.ServiceRepository, cache providers.CacheProvider, ttl time.Duration) repositories.ServiceRepository {
	return &CachedServiceAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     int(ttl / time.Second),
	}
}

const activeServicesCacheKey = "services:active"

func serviceCacheKey(id string) string {
	return fmt.Sprintf("service:%s", id)
}

// GetByID retrieves a service by ID with caching
func (a *CachedServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	cacheKey := serviceCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var service entities.Service
		if err := json.Unmarshal(cached, &service); err == nil {
			return &service, nil
		}
		log.Warn().Err(err).Str("service_id", id).Msg("failed to unmarshal cached service")
	}

	service, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.store(ctx, cacheKey, service)
	return service, nil
}

// ListActive retrieves the active services with caching
func (a *CachedServiceAdapter) ListActive(ctx context.Context) ([]*entities.Service, error) {
	if cached, err := a.cache.Get(ctx, activeServicesCacheKey); err == nil {
		var services []*entities.Service
		if err := json.Unmarshal(cached, &services); err == nil {
			return services, nil
		}
		log.Warn().Err(err).Msg("failed to unmarshal cached service list")
	}

	services, err := a.adapter.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	a.store(ctx, activeServicesCacheKey, services)
	return services, nil
}

// Save saves a service and invalidates related caches
func (a *CachedServiceAdapter) Save(ctx context.Context, service *entities.Service) error {
	if err := a.adapter.Save(ctx, service); err != nil {
		return err
	}

	for _, key := range []string{serviceCacheKey(service.ID), activeServicesCacheKey} {
		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to invalidate service cache")
		}
	}
	return nil
}

// store writes value to the cache; failures only cost a later cache miss.
func (a *CachedServiceAdapter) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal service cache entry")
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache service")
	}
}
