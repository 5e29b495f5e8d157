// Package rediscache implements the shared tier of the model cache on
// Redis. Models are serialized to JSON so every engine instance behind
// the same Redis sees the version activated by any of them.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "forecast:model:"

// ModelCache is the Redis-backed model cache tier.
type ModelCache struct {
	client *redis.Client
}

// NewModelCache creates a Redis cache over the given client.
func NewModelCache(client *redis.Client) *ModelCache {
	return &ModelCache{client: client}
}

// Get retrieves the cached active model for a restaurant.
func (c *ModelCache) Get(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	payload, err := c.client.Get(ctx, key(restaurantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrCacheMiss
		}
		return nil, err
	}

	var record modelRecord
	if err = json.Unmarshal(payload, &record); err != nil {
		// A corrupt entry behaves like a miss; the registry falls back
		// to the database and overwrites it.
		return nil, ports.ErrCacheMiss
	}
	return record.toDomain()
}

// Set caches the restaurant's active model for ttl.
func (c *ModelCache) Set(ctx context.Context, model *mlmodel.MLModel, ttl time.Duration) error {
	if err := model.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(recordFromDomain(model))
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key(model.RestaurantID()), payload, ttl).Err()
}

// Delete evicts the restaurant's cached model.
func (c *ModelCache) Delete(ctx context.Context, restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	return c.client.Del(ctx, key(restaurantID)).Err()
}

func key(restaurantID kernel.UUID) string {
	return fmt.Sprintf("%s%s", keyPrefix, restaurantID.String())
}
