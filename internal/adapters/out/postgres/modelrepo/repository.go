package modelrepo

import (
	"context"
	"errors"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormModelRepository implements ModelRepository using GORM.
type GormModelRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormModelRepository creates a new GORM model repository.
func NewGormModelRepository(db *gorm.DB, tracker aggregateTracker) *GormModelRepository {
	return &GormModelRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new model version to the database.
func (r *GormModelRepository) Add(ctx context.Context, aggregate *mlmodel.MLModel) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves lifecycle changes of an existing version to the database.
func (r *GormModelRepository) Update(ctx context.Context, aggregate *mlmodel.MLModel) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&ModelDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"status":             dto.Status,
		"predictions_count":  dto.PredictionsCount,
		"last_prediction_at": dto.LastPredictionAt,
		"recent_mae":         dto.RecentMAE,
		"accuracy_trend":     dto.AccuracyTrend,
		"failure_reason":     dto.FailureReason,
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

// GetActive retrieves the restaurant's Active model version.
func (r *GormModelRepository) GetActive(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dto ModelDTO
	err := r.db.WithContext(ctx).
		First(&dto, "restaurant_id = ? AND status = ?", restaurantID.Bytes(), mlmodel.Active.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("active model", restaurantID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByVersion retrieves one specific version of the restaurant's history.
func (r *GormModelRepository) GetByVersion(ctx context.Context, restaurantID kernel.UUID, version int) (*mlmodel.MLModel, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dto ModelDTO
	err := r.db.WithContext(ctx).
		First(&dto, "restaurant_id = ? AND version = ?", restaurantID.Bytes(), version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("model version", restaurantID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// NextVersion reserves the next version number for the restaurant. A
// transaction-scoped advisory lock serializes concurrent reservations, so
// the number cannot be observed twice before either transaction commits.
func (r *GormModelRepository) NextVersion(ctx context.Context, restaurantID kernel.UUID) (int, error) {
	if err := restaurantID.Validate(); err != nil {
		return 0, err
	}

	err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", restaurantID.String()).Error
	if err != nil {
		return 0, err
	}

	var latest int
	err = r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(version), 0) FROM ml_models WHERE restaurant_id = ?", restaurantID.Bytes()).
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}

	return latest + 1, nil
}

// ListVersions retrieves the restaurant's full history, newest first.
func (r *GormModelRepository) ListVersions(ctx context.Context, restaurantID kernel.UUID) ([]*mlmodel.MLModel, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ModelDTO
	err := r.db.WithContext(ctx).
		Order("version DESC").
		Find(&dtos, "restaurant_id = ?", restaurantID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	models := make([]*mlmodel.MLModel, 0, len(dtos))
	for _, dto := range dtos {
		model, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		models = append(models, model)
	}

	return models, nil
}

// DeleteVersions removes the given versions from the history.
func (r *GormModelRepository) DeleteVersions(ctx context.Context, restaurantID kernel.UUID, versions []int) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}
	if len(versions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("restaurant_id = ? AND version IN ?", restaurantID.Bytes(), versions).
		Delete(&ModelDTO{}).Error
}

// IncrementPredictions bumps the served-prediction counter in a single
// UPDATE, so concurrent predictions never lose counts.
func (r *GormModelRepository) IncrementPredictions(ctx context.Context, id kernel.UUID, predictedAt time.Time) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&ModelDTO{}).Where("id = ?", id.Bytes()).Updates(map[string]any{
		"predictions_count":  gorm.Expr("predictions_count + 1"),
		"last_prediction_at": predictedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("model", id.String())
	}

	return nil
}
