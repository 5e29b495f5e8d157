package commands

import (
	"context"
	"log/slog"
)

// RetrainIfNeededCommandHandler evaluates the retraining triggers for a
// restaurant and delegates to the training handler only when a trigger
// fires: no active model, age past the limit, degrading accuracy, drift
// past the threshold, or prediction volume past the cap.
type RetrainIfNeededCommandHandler struct {
	store   ModelStore
	trainer ModelTrainer
	logger  *slog.Logger
}

// NewRetrainIfNeededCommandHandler creates a conditional retraining handler.
func NewRetrainIfNeededCommandHandler(store ModelStore, trainer ModelTrainer, logger *slog.Logger) RetrainIfNeededCommandHandler {
	return RetrainIfNeededCommandHandler{
		store:   store,
		trainer: trainer,
		logger:  logger.With("component", "retrain-if-needed"),
	}
}

// Handle checks the triggers and trains when needed.
func (h *RetrainIfNeededCommandHandler) Handle(ctx context.Context, cmd RetrainIfNeededCommand) (RetrainingResult, error) {
	if err := cmd.Validate(); err != nil {
		return RetrainingResult{}, err
	}

	decision, err := h.store.CheckRetrainingNeeded(ctx, cmd.RestaurantID())
	if err != nil {
		return RetrainingResult{}, err
	}
	if !decision.Needed {
		return RetrainingResult{Retrained: false}, nil
	}

	h.logger.Info("retraining triggered",
		"restaurantId", cmd.RestaurantID().String(),
		"reasons", decision.Reasons,
	)

	trainCmd, err := NewTrainModelCommand(cmd.RestaurantID(), cmd.ModelType(), cmd.Params())
	if err != nil {
		return RetrainingResult{}, err
	}

	training, err := h.trainer.Handle(ctx, trainCmd)
	if err != nil {
		return RetrainingResult{}, err
	}

	return RetrainingResult{
		Retrained: training.Success,
		Reasons:   decision.Reasons,
		Training:  training,
	}, nil
}
