// Package snapshotrepo provides data transfer objects and mapping
// functions for feature snapshot persistence. Signals are stored as flat
// columns; the (restaurant_id, captured_at) pair is the upsert key.
package snapshotrepo

import (
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// SnapshotDTO represents the database structure for persisting hourly
// feature snapshots.
type SnapshotDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_snapshots_restaurant_hour"`
	CapturedAt   time.Time `gorm:"uniqueIndex:idx_snapshots_restaurant_hour;index"`
	IsHoliday    bool

	Temperature       float64
	FeelsLike         float64
	Humidity          float64
	Precipitation     float64
	PrecipProbability float64
	Snowfall          float64
	WindSpeed         float64
	CloudCover        float64

	EventCount         int
	EventAttendanceLog float64
	EventProximity     float64
	EventImpact        float64

	LagSameHour1D float64 `gorm:"column:lag_same_hour_1d"`
	LagSameHour7D float64 `gorm:"column:lag_same_hour_7d"`
	RollingAvg7D  float64 `gorm:"column:rolling_avg_7d"`
	RollingAvg28  float64 `gorm:"column:rolling_avg_28d"`
	DemandTrend   float64

	ActualDineIn   *float64
	ActualDelivery *float64
}

// TableName specifies the database table name for feature snapshots.
func (SnapshotDTO) TableName() string {
	return "feature_snapshots"
}

// fromDomain converts a snapshot aggregate to its database representation.
func fromDomain(snapshot *forecast.FeatureSnapshot) SnapshotDTO {
	weather := snapshot.Weather()
	events := snapshot.Events()
	lags := snapshot.Lags()

	return SnapshotDTO{
		ID:           snapshot.ID().Bytes(),
		RestaurantID: snapshot.RestaurantID().Bytes(),
		CapturedAt:   snapshot.CapturedAt(),
		IsHoliday:    snapshot.IsHoliday(),

		Temperature:       weather.Temperature,
		FeelsLike:         weather.FeelsLike,
		Humidity:          weather.Humidity,
		Precipitation:     weather.Precipitation,
		PrecipProbability: weather.PrecipProbability,
		Snowfall:          weather.Snowfall,
		WindSpeed:         weather.WindSpeed,
		CloudCover:        weather.CloudCover,

		EventCount:         events.Count,
		EventAttendanceLog: events.AttendanceLog,
		EventProximity:     events.Proximity,
		EventImpact:        events.Impact,

		LagSameHour1D: lags.SameHour1D,
		LagSameHour7D: lags.SameHour7D,
		RollingAvg7D:  lags.RollingAvg7D,
		RollingAvg28:  lags.RollingAvg28,
		DemandTrend:   lags.Trend,

		ActualDineIn:   snapshot.ActualDineIn(),
		ActualDelivery: snapshot.ActualDelivery(),
	}
}

// toDomain converts a database DTO back to a snapshot aggregate using
// RestoreFeatureSnapshot.
func toDomain(dto SnapshotDTO) (*forecast.FeatureSnapshot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	return forecast.RestoreFeatureSnapshot(
		id,
		restaurantID,
		dto.CapturedAt,
		dto.IsHoliday,
		forecast.WeatherObservation{
			Temperature:       dto.Temperature,
			FeelsLike:         dto.FeelsLike,
			Humidity:          dto.Humidity,
			Precipitation:     dto.Precipitation,
			PrecipProbability: dto.PrecipProbability,
			Snowfall:          dto.Snowfall,
			WindSpeed:         dto.WindSpeed,
			CloudCover:        dto.CloudCover,
		},
		forecast.EventSignal{
			Count:         dto.EventCount,
			AttendanceLog: dto.EventAttendanceLog,
			Proximity:     dto.EventProximity,
			Impact:        dto.EventImpact,
		},
		forecast.LagSignal{
			SameHour1D:   dto.LagSameHour1D,
			SameHour7D:   dto.LagSameHour7D,
			RollingAvg7D: dto.RollingAvg7D,
			RollingAvg28: dto.RollingAvg28,
			Trend:        dto.DemandTrend,
		},
		dto.ActualDineIn,
		dto.ActualDelivery,
	)
}
