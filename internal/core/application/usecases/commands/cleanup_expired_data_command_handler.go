package commands

import (
	"context"
	"log/slog"
	"time"
)

// Retention windows for the cleanup sweep.
const (
	// snapshotRetention keeps one quarter of hourly snapshots, enough for
	// the 90-day training window.
	snapshotRetention = 90 * 24 * time.Hour
	// eventRetention keeps ended events for a week of postmortem context.
	eventRetention = 7 * 24 * time.Hour
	// keepModelVersions is how many versions each restaurant retains.
	keepModelVersions = 10
)

// CleanupExpiredDataCommandHandler removes data past retention: old
// snapshots, ended cached events, and surplus model versions. The active
// model version is never pruned regardless of its age.
type CleanupExpiredDataCommandHandler struct {
	cleanupFactory    CleanupUoWFactory
	restaurantFactory RestaurantUoWFactory
	store             ModelStore
	logger            *slog.Logger
	now               func() time.Time
}

// NewCleanupExpiredDataCommandHandler creates a cleanup handler.
func NewCleanupExpiredDataCommandHandler(
	cleanupFactory CleanupUoWFactory,
	restaurantFactory RestaurantUoWFactory,
	store ModelStore,
	logger *slog.Logger,
) CleanupExpiredDataCommandHandler {
	return CleanupExpiredDataCommandHandler{
		cleanupFactory:    cleanupFactory,
		restaurantFactory: restaurantFactory,
		store:             store,
		logger:            logger.With("component", "cleanup-expired-data"),
		now:               time.Now,
	}
}

// Handle runs the retention sweep and reports what was removed.
func (h *CleanupExpiredDataCommandHandler) Handle(ctx context.Context, cmd CleanupExpiredDataCommand) (CleanupResult, error) {
	if err := cmd.Validate(); err != nil {
		return CleanupResult{}, err
	}

	result, err := h.sweepStorage(ctx)
	if err != nil {
		return CleanupResult{}, err
	}

	pruned, err := h.pruneModelHistories(ctx)
	if err != nil {
		return CleanupResult{}, err
	}
	result.VersionsPruned = pruned

	h.logger.Info("cleanup finished",
		"snapshotsRemoved", result.SnapshotsRemoved,
		"eventsRemoved", result.EventsRemoved,
		"versionsPruned", result.VersionsPruned,
	)
	return result, nil
}

// sweepStorage removes expired snapshots and events in one transaction.
func (h *CleanupExpiredDataCommandHandler) sweepStorage(ctx context.Context) (CleanupResult, error) {
	uow := h.cleanupFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CleanupResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.now()
	var result CleanupResult

	snapshotsRemoved, err := uow.SnapshotRepository().DeleteOlderThan(ctx, now.Add(-snapshotRetention))
	if err != nil {
		return CleanupResult{}, err
	}
	result.SnapshotsRemoved = snapshotsRemoved

	eventsRemoved, err := uow.EventRepository().DeleteEndedBefore(ctx, now.Add(-eventRetention))
	if err != nil {
		return CleanupResult{}, err
	}
	result.EventsRemoved = eventsRemoved

	if err = uow.Commit(ctx); err != nil {
		return CleanupResult{}, err
	}
	return result, nil
}

// pruneModelHistories trims every restaurant's version history through
// the registry, which protects the active version.
func (h *CleanupExpiredDataCommandHandler) pruneModelHistories(ctx context.Context) (int, error) {
	uow := h.restaurantFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	restaurants, err := uow.RestaurantRepository().GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	total := 0
	for _, restaurant := range restaurants {
		pruned, pruneErr := h.store.PruneHistory(ctx, restaurant.ID(), keepModelVersions)
		if pruneErr != nil {
			h.logger.Error("model history pruning failed",
				"restaurantId", restaurant.ID().String(),
				"error", pruneErr,
			)
			continue
		}
		total += pruned
	}
	return total, nil
}
