package eventrepo

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormEventRepository implements EventRepository using GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM event repository.
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// ReplaceForRestaurant swaps the restaurant's cached events overlapping
// [from, to) with the fresh provider fetch. Delete and insert run in the
// unit of work's transaction, so readers never see a half-replaced cache.
func (r *GormEventRepository) ReplaceForRestaurant(
	ctx context.Context,
	restaurantID kernel.UUID,
	events []forecast.LocalEvent,
	from, to time.Time,
) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND starts_at < ? AND ends_at > ?", restaurantID.Bytes(), to, from).
		Delete(&EventDTO{}).Error
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, fromDomain(restaurantID, event))
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}

// GetOverlapping retrieves cached events overlapping [from, to).
func (r *GormEventRepository) GetOverlapping(
	ctx context.Context,
	restaurantID kernel.UUID,
	from, to time.Time,
) ([]forecast.LocalEvent, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Order("starts_at").
		Find(&dtos, "restaurant_id = ? AND starts_at < ? AND ends_at > ?", restaurantID.Bytes(), to, from).Error
	if err != nil {
		return nil, err
	}

	events := make([]forecast.LocalEvent, 0, len(dtos))
	for _, dto := range dtos {
		event, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		events = append(events, event)
	}

	return events, nil
}

// DeleteEndedBefore removes events that ended before the cutoff.
func (r *GormEventRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("ends_at < ?", cutoff).
		Delete(&EventDTO{})
	return result.RowsAffected, result.Error
}
