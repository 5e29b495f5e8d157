// Package ports defines the persistence and provider interfaces of the
// forecasting core. These interfaces establish contracts between the
// domain layer and infrastructure, enabling dependency inversion and
// testability.
package ports

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
)

// ModelRepository defines the persistence contract for model version
// aggregates. One restaurant owns a monotonically versioned history of
// models; at most one version per restaurant is Active.
type ModelRepository interface {
	// Add persists a new model version. The version must already be
	// assigned and unused for the restaurant.
	Add(ctx context.Context, model *mlmodel.MLModel) error

	// Update persists lifecycle changes (status, performance state) of an
	// existing version.
	Update(ctx context.Context, model *mlmodel.MLModel) error

	// GetActive retrieves the restaurant's Active model version.
	// Returns errs.ErrObjectNotFound when no version is Active.
	GetActive(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error)

	// GetByVersion retrieves one specific version of the restaurant's
	// model history.
	GetByVersion(ctx context.Context, restaurantID kernel.UUID, version int) (*mlmodel.MLModel, error)

	// NextVersion reserves the next version number for the restaurant.
	// Inside a transaction the reservation is serialized, so two
	// concurrent training runs never observe the same number.
	NextVersion(ctx context.Context, restaurantID kernel.UUID) (int, error)

	// ListVersions retrieves the restaurant's full version history,
	// newest first.
	ListVersions(ctx context.Context, restaurantID kernel.UUID) ([]*mlmodel.MLModel, error)

	// DeleteVersions removes the given versions from the history.
	DeleteVersions(ctx context.Context, restaurantID kernel.UUID, versions []int) error

	// IncrementPredictions atomically bumps the version's served
	// prediction counter and stamps the prediction time. Implementations
	// must perform the increment in a single statement so concurrent
	// predictions never lose counts.
	IncrementPredictions(ctx context.Context, id kernel.UUID, predictedAt time.Time) error
}
