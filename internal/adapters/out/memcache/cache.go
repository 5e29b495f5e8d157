// Package memcache implements the in-process tier of the model cache on
// top of patrickmn/go-cache. Entries expire per TTL; a janitor goroutine
// reclaims expired entries in the background.
package memcache

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/ports"

	gocache "github.com/patrickmn/go-cache"
)

// janitorInterval is how often expired entries are reclaimed.
const janitorInterval = time.Minute

// ModelCache is the in-process model cache tier. Models are stored by
// reference; aggregates are treated as immutable once cached.
type ModelCache struct {
	cache *gocache.Cache
}

// NewModelCache creates an in-process cache. Per-entry TTLs are set on
// each Set call; defaultTTL applies when Set receives a zero TTL.
func NewModelCache(defaultTTL time.Duration) *ModelCache {
	return &ModelCache{
		cache: gocache.New(defaultTTL, janitorInterval),
	}
}

// Get retrieves the cached active model for a restaurant.
func (c *ModelCache) Get(_ context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	entry, found := c.cache.Get(restaurantID.String())
	if !found {
		return nil, ports.ErrCacheMiss
	}

	model, ok := entry.(*mlmodel.MLModel)
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return model, nil
}

// Set caches the restaurant's active model for ttl.
func (c *ModelCache) Set(_ context.Context, model *mlmodel.MLModel, ttl time.Duration) error {
	if err := model.Validate(); err != nil {
		return err
	}

	c.cache.Set(model.RestaurantID().String(), model, ttl)
	return nil
}

// Delete evicts the restaurant's cached model.
func (c *ModelCache) Delete(_ context.Context, restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.cache.Delete(restaurantID.String())
	return nil
}
