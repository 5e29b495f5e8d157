package forecast

import (
	"time"

	"forecast/internal/core/domain/model/kernel"
)

// HourlyWeather is the weather provider's data contract for one forecast
// hour. Fields use metric units: degrees Celsius, millimeters, percent,
// and meters per second.
type HourlyWeather struct {
	Time              time.Time
	Temperature       float64
	FeelsLike         float64
	Humidity          float64
	Precipitation     float64
	PrecipProbability float64
	Snowfall          float64
	WindSpeed         float64
	CloudCover        float64
}

// LocalEvent is the event provider's data contract for one local event
// near a restaurant.
type LocalEvent struct {
	Name       string
	Category   string
	Attendance int
	Rank       int
	Venue      kernel.GeoPoint
	StartsAt   time.Time
	EndsAt     time.Time
}

// HourlyVolume is one hour of historical actual order volume, the label
// source for training and for lag features.
type HourlyVolume struct {
	Hour     time.Time
	DineIn   float64
	Delivery float64
}

// WeatherObservation holds the raw (pre-normalization) weather signal
// persisted on a feature snapshot.
type WeatherObservation struct {
	Temperature       float64
	FeelsLike         float64
	Humidity          float64
	Precipitation     float64
	PrecipProbability float64
	Snowfall          float64
	WindSpeed         float64
	CloudCover        float64
}

// EventSignal holds the aggregated local-event signal for one hour:
// event count, log1p of total attendance, inverse distance to the nearest
// venue, and the capped impact score.
type EventSignal struct {
	Count         int
	AttendanceLog float64
	Proximity     float64
	Impact        float64
}

// LagSignal holds historical demand features for one hour: same-hour
// values one and seven days back, 7- and 28-day rolling means, and the
// short-over-long trend ratio.
type LagSignal struct {
	SameHour1D   float64
	SameHour7D   float64
	RollingAvg7D float64
	RollingAvg28 float64
	Trend        float64
}
