package commands

import (
	"context"
	"time"

	"forecast/internal/core/application/registry"
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
)

// Collaborator interfaces narrow the registry and feature pipeline to
// what each handler needs, keeping handlers mockable in isolation.
type (
	// ModelStore is the registry surface the command handlers use.
	ModelStore interface {
		Save(ctx context.Context, model *mlmodel.MLModel) error
		SaveFailed(ctx context.Context, model *mlmodel.MLModel, reason string) error
		Load(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error)
		Rollback(ctx context.Context, restaurantID kernel.UUID, targetVersion int) error
		CheckRetrainingNeeded(ctx context.Context, restaurantID kernel.UUID) (registry.RetrainingDecision, error)
		UpdatePerformance(ctx context.Context, restaurantID kernel.UUID, recentMAE float64) error
		PruneHistory(ctx context.Context, restaurantID kernel.UUID, keep int) (int, error)
	}

	// FeatureBuilder is the feature pipeline surface the handlers use.
	FeatureBuilder interface {
		BuildSnapshots(ctx context.Context, restaurant *forecast.Restaurant, events []forecast.LocalEvent, hours []time.Time) ([]*forecast.FeatureSnapshot, error)
		Vector(snapshot *forecast.FeatureSnapshot) (forecast.FeatureVector, error)
	}

	// ModelTrainer runs one training command. TrainAll and RetrainIfNeeded
	// delegate the actual training through this interface.
	ModelTrainer interface {
		Handle(ctx context.Context, cmd TrainModelCommand) (TrainingResult, error)
	}
)
