package queries

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/ports"
)

// Collaborator interfaces narrow the registry, unit of work, and feature
// pipeline to what the query handlers need, keeping them mockable.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// PredictUoW provides the read repositories the prediction path needs.
	PredictUoW interface {
		TxManager
		RestaurantRepository() ports.RestaurantRepository
		EventRepository() ports.EventRepository
	}

	// PredictUoWFactory creates new prediction unit of work instances.
	PredictUoWFactory interface {
		Create() PredictUoW
	}

	// ModelSource is the registry surface the query handlers use.
	ModelSource interface {
		Load(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error)
		RecordPrediction(ctx context.Context, modelID kernel.UUID) error
	}

	// FeatureBuilder is the feature pipeline surface the handlers use.
	FeatureBuilder interface {
		BuildSnapshots(ctx context.Context, restaurant *forecast.Restaurant, events []forecast.LocalEvent, hours []time.Time) ([]*forecast.FeatureSnapshot, error)
		Vector(snapshot *forecast.FeatureSnapshot) (forecast.FeatureVector, error)
	}
)
