// Package volumesource reads historical hourly order volumes from the
// order system's order_history table. The forecasting engine only reads
// this table; the ordering service owns and writes it.
package volumesource

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormVolumeSource implements VolumeSource with a raw aggregation query,
// following the CQRS read-side convention of bypassing the domain model.
type GormVolumeSource struct {
	db *gorm.DB
}

// NewGormVolumeSource creates a new volume source over the given
// connection.
func NewGormVolumeSource(db *gorm.DB) *GormVolumeSource {
	return &GormVolumeSource{db: db}
}

// GetHourlyVolumes aggregates order counts per hour and channel for
// [from, to), ordered by hour. Hours with no orders produce no row.
func (s *GormVolumeSource) GetHourlyVolumes(
	ctx context.Context,
	restaurantID kernel.UUID,
	from, to time.Time,
) ([]forecast.HourlyVolume, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.WithContext(ctx).Raw(`
		SELECT
			date_trunc('hour', ordered_at) AS hour,
			COUNT(*) FILTER (WHERE channel = 'DINE_IN')   AS dine_in,
			COUNT(*) FILTER (WHERE channel = 'DELIVERY')  AS delivery
		FROM order_history
		WHERE restaurant_id = ?
		  AND ordered_at >= ?
		  AND ordered_at < ?
		GROUP BY 1
		ORDER BY 1
	`, restaurantID.Bytes(), from, to).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	volumes := make([]forecast.HourlyVolume, 0)
	for rows.Next() {
		var volume forecast.HourlyVolume
		if err = rows.Scan(&volume.Hour, &volume.DineIn, &volume.Delivery); err != nil {
			return nil, err
		}
		volumes = append(volumes, volume)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return volumes, nil
}
