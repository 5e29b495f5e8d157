package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/domain/services"
)

// trainingWindow is how far back labeled snapshots feed a training run.
const trainingWindow = 90 * 24 * time.Hour

// TrainModelCommandHandler trains one model version end to end: it loads
// the labeled snapshot history, assembles and normalizes the design
// matrix, fits the requested model family, and hands the artifact to the
// registry for versioned activation. Failed runs are recorded as Failed
// versions so the history shows every attempt.
type TrainModelCommandHandler struct {
	uowFactory TrainingUoWFactory
	store      ModelStore
	features   FeatureBuilder
	normalizer services.Normalizer
	logger     *slog.Logger
	seed       int64
	now        func() time.Time
}

// NewTrainModelCommandHandler creates a training handler. The seed fixes
// the gradient-boost subsampling sequence, making runs reproducible.
func NewTrainModelCommandHandler(
	uowFactory TrainingUoWFactory,
	store ModelStore,
	features FeatureBuilder,
	logger *slog.Logger,
	seed int64,
) TrainModelCommandHandler {
	return TrainModelCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		features:   features,
		normalizer: services.NewNormalizer(),
		logger:     logger.With("component", "train-model"),
		seed:       seed,
		now:        time.Now,
	}
}

// Handle runs one training. Business-level refusals (insufficient data)
// return Success=false with a message; infrastructure and registry
// failures return an error.
func (h *TrainModelCommandHandler) Handle(ctx context.Context, cmd TrainModelCommand) (TrainingResult, error) {
	if err := cmd.Validate(); err != nil {
		return TrainingResult{}, err
	}

	restaurant, snapshots, err := h.loadTrainingData(ctx, cmd.RestaurantID())
	if err != nil {
		return TrainingResult{}, err
	}

	if len(snapshots) < restaurant.MinTrainingPoints() {
		message := fmt.Sprintf("insufficient training data: %d labeled hours, need %d",
			len(snapshots), restaurant.MinTrainingPoints())
		h.logger.Info("training skipped",
			"restaurantId", cmd.RestaurantID().String(),
			"reason", message,
		)
		return TrainingResult{Success: false, ModelType: cmd.ModelType(), Message: message}, nil
	}

	set, normalization, err := h.buildTrainingSet(snapshots)
	if err != nil {
		return TrainingResult{}, err
	}

	weights, err := h.train(cmd.ModelType(), set, cmd.Params())
	if err != nil {
		return h.recordFailure(ctx, cmd, normalization, len(snapshots), err)
	}

	metrics, err := h.evaluate(weights, set)
	if err != nil {
		return TrainingResult{}, err
	}

	model, err := mlmodel.NewMLModel(
		kernel.NewUUID(),
		cmd.RestaurantID(),
		cmd.ModelType(),
		weights,
		normalization,
		cmd.Params(),
		metrics,
		set.Len(),
		h.now(),
	)
	if err != nil {
		return TrainingResult{}, err
	}

	if err = h.store.Save(ctx, model); err != nil {
		return TrainingResult{}, err
	}

	h.logger.Info("model trained",
		"restaurantId", cmd.RestaurantID().String(),
		"version", model.Version(),
		"modelType", cmd.ModelType().String(),
		"trainingPoints", set.Len(),
		"mae", metrics.MAE,
	)
	return TrainingResult{
		Success:        true,
		Version:        model.Version(),
		ModelType:      cmd.ModelType(),
		TrainingPoints: set.Len(),
		Metrics:        metrics,
	}, nil
}

// loadTrainingData reads the restaurant and its labeled snapshots for
// the training window in one read transaction.
func (h *TrainModelCommandHandler) loadTrainingData(ctx context.Context, restaurantID kernel.UUID) (*forecast.Restaurant, []*forecast.FeatureSnapshot, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	restaurant, err := uow.RestaurantRepository().Get(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}

	now := h.now()
	snapshots, err := uow.SnapshotRepository().GetLabeled(ctx, restaurantID, now.Add(-trainingWindow), now)
	if err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return restaurant, snapshots, nil
}

// buildTrainingSet assembles the raw design matrix from the snapshots,
// fits normalization on it, and returns the normalized set.
func (h *TrainModelCommandHandler) buildTrainingSet(snapshots []*forecast.FeatureSnapshot) (services.TrainingSet, mlmodel.Normalization, error) {
	raw := make([][]float64, 0, len(snapshots))
	dineIn := make([]float64, 0, len(snapshots))
	delivery := make([]float64, 0, len(snapshots))

	for _, snapshot := range snapshots {
		vector, err := h.features.Vector(snapshot)
		if err != nil {
			return services.TrainingSet{}, mlmodel.Normalization{}, err
		}
		raw = append(raw, vector.Features())
		dineIn = append(dineIn, *snapshot.ActualDineIn())
		delivery = append(delivery, *snapshot.ActualDelivery())
	}

	normalization, err := h.normalizer.Fit(raw)
	if err != nil {
		return services.TrainingSet{}, mlmodel.Normalization{}, err
	}
	normalized, err := h.normalizer.ApplyAll(normalization, raw)
	if err != nil {
		return services.TrainingSet{}, mlmodel.Normalization{}, err
	}

	return services.TrainingSet{Features: normalized, DineIn: dineIn, Delivery: delivery}, normalization, nil
}

// train dispatches to the trainer for the requested model family.
func (h *TrainModelCommandHandler) train(
	modelType mlmodel.ModelType,
	set services.TrainingSet,
	params mlmodel.ModelParameters,
) (mlmodel.Weights, error) {
	switch modelType {
	case mlmodel.Linear:
		weights, err := services.NewLinearTrainer().Train(set, params)
		if err != nil {
			return mlmodel.Weights{}, err
		}
		return mlmodel.NewLinearWeights(weights), nil
	case mlmodel.GradientBoost:
		weights, err := services.NewGradientBoostTrainer(h.rng()).Train(set, params)
		if err != nil {
			return mlmodel.Weights{}, err
		}
		return mlmodel.NewGradientBoostWeights(weights), nil
	default:
		weights, err := services.NewEnsembleTrainer(h.rng()).Train(set, params)
		if err != nil {
			return mlmodel.Weights{}, err
		}
		return mlmodel.NewEnsembleWeights(weights), nil
	}
}

// evaluate scores the training set in-sample against the merged target.
func (h *TrainModelCommandHandler) evaluate(weights mlmodel.Weights, set services.TrainingSet) (mlmodel.TrainingMetrics, error) {
	target := set.MergedTarget()
	predicted := make([]float64, len(target))

	for i, row := range set.Features {
		switch weights.ModelType() {
		case mlmodel.Linear:
			linear, err := weights.Linear()
			if err != nil {
				return mlmodel.TrainingMetrics{}, err
			}
			predicted[i] = services.PredictLinear(linear, row)
		case mlmodel.GradientBoost:
			gb, err := weights.GradientBoost()
			if err != nil {
				return mlmodel.TrainingMetrics{}, err
			}
			predicted[i] = services.PredictGradientBoost(gb, row)
		default:
			ensemble, err := weights.Ensemble()
			if err != nil {
				return mlmodel.TrainingMetrics{}, err
			}
			predicted[i] = services.PredictEnsemble(ensemble, row)
		}
	}
	return services.ComputeTrainingMetrics(target, predicted)
}

// recordFailure persists a Failed version describing the broken run and
// reports the failure as a business result, not an error, so batch
// training continues with the remaining restaurants.
func (h *TrainModelCommandHandler) recordFailure(
	ctx context.Context,
	cmd TrainModelCommand,
	normalization mlmodel.Normalization,
	trainingPoints int,
	trainErr error,
) (TrainingResult, error) {
	model, err := mlmodel.NewMLModel(
		kernel.NewUUID(),
		cmd.RestaurantID(),
		cmd.ModelType(),
		emptyWeights(cmd.ModelType()),
		normalization,
		cmd.Params(),
		mlmodel.TrainingMetrics{},
		trainingPoints,
		h.now(),
	)
	if err != nil {
		return TrainingResult{}, err
	}

	if err = h.store.SaveFailed(ctx, model, trainErr.Error()); err != nil {
		return TrainingResult{}, err
	}

	return TrainingResult{
		Success:   false,
		Version:   model.Version(),
		ModelType: cmd.ModelType(),
		Message:   fmt.Sprintf("training failed: %s", trainErr),
	}, nil
}

// emptyWeights builds a structurally valid, empty artifact of the given
// family for Failed version records.
func emptyWeights(modelType mlmodel.ModelType) mlmodel.Weights {
	switch modelType {
	case mlmodel.Linear:
		return mlmodel.NewLinearWeights(mlmodel.LinearWeights{Coefficients: map[string]float64{}})
	case mlmodel.GradientBoost:
		return mlmodel.NewGradientBoostWeights(mlmodel.GradientBoostWeights{})
	default:
		return mlmodel.NewEnsembleWeights(mlmodel.EnsembleWeights{
			Linear:              mlmodel.LinearWeights{Coefficients: map[string]float64{}},
			LinearWeight:        0.5,
			GradientBoostWeight: 0.5,
		})
	}
}

func (h *TrainModelCommandHandler) rng() *rand.Rand {
	return rand.New(rand.NewSource(h.seed)) //nolint:gosec //reproducible subsampling, not crypto
}
