package commands

import (
	"context"
	"log/slog"

	"forecast/internal/core/domain/model/forecast"
)

// TrainAllCommandHandler iterates every restaurant and runs the
// conditional retraining check for each. One restaurant's failure is
// recorded and the batch moves on.
type TrainAllCommandHandler struct {
	uowFactory RestaurantUoWFactory
	store      ModelStore
	trainer    ModelTrainer
	logger     *slog.Logger
}

// NewTrainAllCommandHandler creates a batch training handler.
func NewTrainAllCommandHandler(
	uowFactory RestaurantUoWFactory,
	store ModelStore,
	trainer ModelTrainer,
	logger *slog.Logger,
) TrainAllCommandHandler {
	return TrainAllCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		trainer:    trainer,
		logger:     logger.With("component", "train-all"),
	}
}

// Handle runs the conditional retraining sweep.
func (h *TrainAllCommandHandler) Handle(ctx context.Context, cmd TrainAllCommand) (BatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return BatchResult{}, err
	}

	restaurants, err := h.listRestaurants(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	retrainHandler := NewRetrainIfNeededCommandHandler(h.store, h.trainer, h.logger)

	var result BatchResult
	for _, restaurant := range restaurants {
		retrainCmd, cmdErr := NewRetrainIfNeededCommand(restaurant.ID(), cmd.ModelType(), cmd.Params())
		if cmdErr != nil {
			result.RecordFailure(restaurant.ID().String(), cmdErr)
			continue
		}

		if _, handleErr := retrainHandler.Handle(ctx, retrainCmd); handleErr != nil {
			h.logger.Error("restaurant training failed",
				"restaurantId", restaurant.ID().String(),
				"error", handleErr,
			)
			result.RecordFailure(restaurant.ID().String(), handleErr)
			continue
		}
		result.RecordSuccess()
	}

	h.logger.Info("training sweep finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

func (h *TrainAllCommandHandler) listRestaurants(ctx context.Context) ([]*forecast.Restaurant, error) {
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
