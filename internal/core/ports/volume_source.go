package ports

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

// VolumeSource reads historical hourly order volumes from the order
// system. The forecasting engine only reads this data; it never owns it.
type VolumeSource interface {
	// GetHourlyVolumes retrieves per-hour dine-in and delivery volumes
	// for [from, to), ordered by hour. Hours with no orders are absent.
	GetHourlyVolumes(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]forecast.HourlyVolume, error)
}
