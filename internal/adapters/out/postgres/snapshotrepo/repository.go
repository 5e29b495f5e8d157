package snapshotrepo

import (
	"context"
	"errors"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotRepository implements SnapshotRepository using GORM.
type GormSnapshotRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormSnapshotRepository creates a new GORM snapshot repository.
func NewGormSnapshotRepository(db *gorm.DB, tracker aggregateTracker) *GormSnapshotRepository {
	return &GormSnapshotRepository{
		db:      db,
		tracker: tracker,
	}
}

// Upsert stores a snapshot keyed by restaurant and hour. Re-collecting an
// hour refreshes the signals but never clears recorded actuals.
func (r *GormSnapshotRepository) Upsert(ctx context.Context, aggregate *forecast.FeatureSnapshot) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "restaurant_id"}, {Name: "captured_at"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_holiday",
			"temperature", "feels_like", "humidity", "precipitation",
			"precip_probability", "snowfall", "wind_speed", "cloud_cover",
			"event_count", "event_attendance_log", "event_proximity", "event_impact",
			"lag_same_hour_1d", "lag_same_hour_7d", "rolling_avg_7d", "rolling_avg_28d",
			"demand_trend",
		}),
	}).Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves the snapshot for one restaurant hour.
func (r *GormSnapshotRepository) Get(ctx context.Context, restaurantID kernel.UUID, hour time.Time) (*forecast.FeatureSnapshot, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dto SnapshotDTO
	err := r.db.WithContext(ctx).
		First(&dto, "restaurant_id = ? AND captured_at = ?", restaurantID.Bytes(), hour.Truncate(time.Hour)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("feature snapshot", restaurantID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetRange retrieves snapshots for [from, to), ordered by hour.
func (r *GormSnapshotRepository) GetRange(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]*forecast.FeatureSnapshot, error) {
	return r.find(ctx, restaurantID,
		"restaurant_id = ? AND captured_at >= ? AND captured_at < ?",
		restaurantID.Bytes(), from, to)
}

// GetUnlabeled retrieves past snapshots still awaiting actual volumes.
func (r *GormSnapshotRepository) GetUnlabeled(ctx context.Context, restaurantID kernel.UUID, before time.Time) ([]*forecast.FeatureSnapshot, error) {
	return r.find(ctx, restaurantID,
		"restaurant_id = ? AND captured_at < ? AND actual_dine_in IS NULL",
		restaurantID.Bytes(), before)
}

// GetLabeled retrieves training examples for [from, to).
func (r *GormSnapshotRepository) GetLabeled(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]*forecast.FeatureSnapshot, error) {
	return r.find(ctx, restaurantID,
		"restaurant_id = ? AND captured_at >= ? AND captured_at < ? AND actual_dine_in IS NOT NULL AND actual_delivery IS NOT NULL",
		restaurantID.Bytes(), from, to)
}

// RecordActuals stores observed volumes on an existing snapshot row.
func (r *GormSnapshotRepository) RecordActuals(ctx context.Context, aggregate *forecast.FeatureSnapshot) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&SnapshotDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"actual_dine_in":  dto.ActualDineIn,
		"actual_delivery": dto.ActualDelivery,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// DeleteOlderThan removes snapshots captured before the cutoff.
func (r *GormSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("captured_at < ?", cutoff).
		Delete(&SnapshotDTO{})
	return result.RowsAffected, result.Error
}

func (r *GormSnapshotRepository) find(ctx context.Context, restaurantID kernel.UUID, query string, args ...any) ([]*forecast.FeatureSnapshot, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dtos []SnapshotDTO
	err := r.db.WithContext(ctx).
		Order("captured_at").
		Find(&dtos, append([]any{query}, args...)...).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]*forecast.FeatureSnapshot, 0, len(dtos))
	for _, dto := range dtos {
		snapshot, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}
