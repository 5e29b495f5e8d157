package commands

import (
	"context"
	"log/slog"
)

// RollbackModelCommandHandler restores a previous model version via the
// registry, which swaps the statuses in one transaction and refreshes
// the caches.
type RollbackModelCommandHandler struct {
	store  ModelStore
	logger *slog.Logger
}

// NewRollbackModelCommandHandler creates a rollback handler.
func NewRollbackModelCommandHandler(store ModelStore, logger *slog.Logger) RollbackModelCommandHandler {
	return RollbackModelCommandHandler{
		store:  store,
		logger: logger.With("component", "rollback-model"),
	}
}

// Handle processes the rollback command.
func (h *RollbackModelCommandHandler) Handle(ctx context.Context, cmd RollbackModelCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.store.Rollback(ctx, cmd.RestaurantID(), cmd.TargetVersion()); err != nil {
		return err
	}

	h.logger.Info("model rollback completed",
		"restaurantId", cmd.RestaurantID().String(),
		"targetVersion", cmd.TargetVersion(),
	)
	return nil
}
