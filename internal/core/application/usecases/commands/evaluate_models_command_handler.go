package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/services"
	"forecast/internal/pkg/errs"
)

// evaluationWindow is how far back labeled snapshots feed the live
// accuracy measurement.
const evaluationWindow = 7 * 24 * time.Hour

// EvaluateModelsCommandHandler measures each active model's live MAE over
// the last week of labeled snapshots and reports it to the registry,
// which reclassifies the accuracy trend. Restaurants without an active
// model or without labeled data are skipped, not failed.
type EvaluateModelsCommandHandler struct {
	uowFactory TrainingUoWFactory
	store      ModelStore
	features   FeatureBuilder
	normalizer services.Normalizer
	predictor  services.Predictor
	logger     *slog.Logger
	now        func() time.Time
}

// NewEvaluateModelsCommandHandler creates an evaluation handler.
func NewEvaluateModelsCommandHandler(
	uowFactory TrainingUoWFactory,
	store ModelStore,
	features FeatureBuilder,
	logger *slog.Logger,
) EvaluateModelsCommandHandler {
	return EvaluateModelsCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		features:   features,
		normalizer: services.NewNormalizer(),
		predictor:  services.NewPredictor(),
		logger:     logger.With("component", "evaluate-models"),
		now:        time.Now,
	}
}

// Handle runs the evaluation sweep across all restaurants.
func (h *EvaluateModelsCommandHandler) Handle(ctx context.Context, cmd EvaluateModelsCommand) (BatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return BatchResult{}, err
	}

	restaurants, err := h.listRestaurants(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, restaurant := range restaurants {
		if evalErr := h.evaluateRestaurant(ctx, restaurant); evalErr != nil {
			h.logger.Error("model evaluation failed",
				"restaurantId", restaurant.ID().String(),
				"error", evalErr,
			)
			result.RecordFailure(restaurant.ID().String(), evalErr)
			continue
		}
		result.RecordSuccess()
	}

	h.logger.Info("evaluation sweep finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

func (h *EvaluateModelsCommandHandler) listRestaurants(ctx context.Context) ([]*forecast.Restaurant, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	restaurants, err := uow.RestaurantRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// evaluateRestaurant predicts the last week's labeled hours with the
// active model and reports the resulting MAE to the registry.
func (h *EvaluateModelsCommandHandler) evaluateRestaurant(ctx context.Context, restaurant *forecast.Restaurant) error {
	model, err := h.store.Load(ctx, restaurant.ID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}
		return err
	}

	snapshots, err := h.loadLabeled(ctx, restaurant)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	actual := make([]float64, 0, len(snapshots))
	predicted := make([]float64, 0, len(snapshots))
	for _, snapshot := range snapshots {
		vector, vectorErr := h.features.Vector(snapshot)
		if vectorErr != nil {
			return vectorErr
		}
		row, applyErr := h.normalizer.Apply(model.Normalization(), vector.Features())
		if applyErr != nil {
			return applyErr
		}
		prediction, predictErr := h.predictor.Predict(model, row, 0.95)
		if predictErr != nil {
			return predictErr
		}

		actual = append(actual, (*snapshot.ActualDineIn()+*snapshot.ActualDelivery())/2)
		predicted = append(predicted, prediction.DineIn)
	}

	metrics, err := services.ComputeTrainingMetrics(actual, predicted)
	if err != nil {
		return err
	}

	if err = h.store.UpdatePerformance(ctx, restaurant.ID(), metrics.MAE); err != nil {
		return err
	}

	h.logger.Info("model evaluated",
		"restaurantId", restaurant.ID().String(),
		"version", model.Version(),
		"recentMae", metrics.MAE,
		"samples", len(snapshots),
	)
	return nil
}

func (h *EvaluateModelsCommandHandler) loadLabeled(ctx context.Context, restaurant *forecast.Restaurant) ([]*forecast.FeatureSnapshot, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.now()
	snapshots, err := uow.SnapshotRepository().GetLabeled(ctx, restaurant.ID(), now.Add(-evaluationWindow), now)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return snapshots, nil
}
