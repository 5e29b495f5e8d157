package ports

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

// SnapshotRepository defines the persistence contract for hourly feature
// snapshots. Snapshots are keyed by restaurant and hour; re-collecting an
// hour overwrites the signals but preserves recorded actuals.
type SnapshotRepository interface {
	// Upsert stores a snapshot for its restaurant and hour, replacing an
	// existing unlabeled record for the same hour.
	Upsert(ctx context.Context, snapshot *forecast.FeatureSnapshot) error

	// Get retrieves the snapshot for one restaurant hour.
	// Returns errs.ErrObjectNotFound when the hour was never collected.
	Get(ctx context.Context, restaurantID kernel.UUID, hour time.Time) (*forecast.FeatureSnapshot, error)

	// GetRange retrieves snapshots for [from, to), ordered by hour.
	GetRange(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]*forecast.FeatureSnapshot, error)

	// GetUnlabeled retrieves snapshots older than before that still have
	// no recorded actuals, candidates for label backfill.
	GetUnlabeled(ctx context.Context, restaurantID kernel.UUID, before time.Time) ([]*forecast.FeatureSnapshot, error)

	// GetLabeled retrieves labeled snapshots for [from, to), the training
	// examples.
	GetLabeled(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]*forecast.FeatureSnapshot, error)

	// RecordActuals stores observed volumes on an existing snapshot.
	RecordActuals(ctx context.Context, snapshot *forecast.FeatureSnapshot) error

	// DeleteOlderThan removes snapshots captured before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
