package ports

import (
	"context"
	"errors"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
)

// ErrCacheMiss is returned by ModelCache.Get when the restaurant's active
// model is not cached. A miss is not a failure: the registry falls back
// to the next tier.
var ErrCacheMiss = errors.New("model is not cached")

// ModelCache caches the active model per restaurant. The registry stacks
// two implementations (in-process, then Redis) in front of the database;
// both tiers honor the same contract.
type ModelCache interface {
	// Get retrieves the cached active model for a restaurant.
	// Returns ErrCacheMiss when absent or expired.
	Get(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error)

	// Set caches the restaurant's active model for ttl.
	Set(ctx context.Context, model *mlmodel.MLModel, ttl time.Duration) error

	// Delete evicts the restaurant's cached model. Used on activation,
	// rollback, and failure so stale versions never serve predictions.
	Delete(ctx context.Context, restaurantID kernel.UUID) error
}
