package ports

import (
	"context"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

// RestaurantRepository defines the persistence contract for restaurant
// aggregates.
type RestaurantRepository interface {
	// Add persists a new restaurant.
	Add(ctx context.Context, restaurant *forecast.Restaurant) error

	// Update persists changes to an existing restaurant.
	Update(ctx context.Context, restaurant *forecast.Restaurant) error

	// Get retrieves a restaurant by identifier.
	// Returns errs.ErrObjectNotFound when the restaurant does not exist.
	Get(ctx context.Context, id kernel.UUID) (*forecast.Restaurant, error)

	// GetAll retrieves every registered restaurant. The scheduler iterates
	// this list for per-restaurant batch operations.
	GetAll(ctx context.Context) ([]*forecast.Restaurant, error)
}
