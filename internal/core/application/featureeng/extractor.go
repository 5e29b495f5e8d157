// Package featureeng orchestrates feature extraction: it pulls weather,
// event, and order-history signals through the outbound ports, degrades
// gracefully to neutral defaults when a provider fails, and assembles the
// canonical feature snapshots and vectors the models consume.
package featureeng

import (
	"context"
	"log/slog"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/services"
	"forecast/internal/core/ports"
)

// lagWindow is how much volume history the lag features need.
const lagWindow = 28 * 24 * time.Hour

// neutralWeather is the fallback observation when the weather provider is
// unavailable: a mild, dry hour that pushes no weather feature far from
// its mean.
var neutralWeather = forecast.WeatherObservation{
	Temperature: 18,
	FeelsLike:   18,
	Humidity:    50,
	CloudCover:  30,
}

// Extractor builds feature snapshots and model-ready vectors for a
// restaurant. Provider failures never fail extraction; the affected
// signal falls back to its neutral default and the failure is logged.
type Extractor struct {
	weather   ports.WeatherProvider
	volumes   ports.VolumeSource
	calendar  services.HolidayCalendar
	scorer    services.EventScorer
	lags      services.LagCalculator
	assembler services.FeatureAssembler
	logger    *slog.Logger
}

// NewExtractor creates an extractor over the given providers.
func NewExtractor(
	weather ports.WeatherProvider,
	volumes ports.VolumeSource,
	logger *slog.Logger,
) *Extractor {
	return &Extractor{
		weather:   weather,
		volumes:   volumes,
		calendar:  services.NewHolidayCalendar(),
		scorer:    services.NewEventScorer(),
		lags:      services.NewLagCalculator(),
		assembler: services.NewFeatureAssembler(),
		logger:    logger.With("component", "feature-extractor"),
	}
}

// BuildSnapshots builds one snapshot per requested hour. Weather is
// fetched once for the whole horizon and volume history once for the lag
// window; events are the restaurant's cached local events.
func (e *Extractor) BuildSnapshots(
	ctx context.Context,
	restaurant *forecast.Restaurant,
	events []forecast.LocalEvent,
	hours []time.Time,
) ([]*forecast.FeatureSnapshot, error) {
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	if len(hours) == 0 {
		return nil, nil
	}

	earliest, latest := hours[0], hours[0]
	for _, hour := range hours[1:] {
		if hour.Before(earliest) {
			earliest = hour
		}
		if hour.After(latest) {
			latest = hour
		}
	}

	weatherByHour := e.fetchWeather(ctx, restaurant, latest)
	history := e.fetchVolumes(ctx, restaurant.ID(), earliest.Add(-lagWindow), latest)

	snapshots := make([]*forecast.FeatureSnapshot, 0, len(hours))
	for _, hour := range hours {
		hour = hour.Truncate(time.Hour)

		snapshot, err := forecast.NewFeatureSnapshot(
			kernel.NewUUID(),
			restaurant.ID(),
			hour,
			e.calendar.IsHoliday(hour),
			e.observationFor(weatherByHour, hour),
			e.scorer.Score(events, restaurant.Location(), restaurant.EventRadiusMiles(), hour),
			e.lags.Compute(history, hour),
		)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// Vector assembles the canonical feature vector for a snapshot.
func (e *Extractor) Vector(snapshot *forecast.FeatureSnapshot) (forecast.FeatureVector, error) {
	return e.assembler.Assemble(snapshot)
}

// fetchWeather pulls the hourly forecast covering now through latest and
// indexes it by hour. A provider failure yields an empty index; every
// hour then falls back to neutral weather.
func (e *Extractor) fetchWeather(ctx context.Context, restaurant *forecast.Restaurant, latest time.Time) map[time.Time]forecast.WeatherObservation {
	days := int(time.Until(latest).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	hourly, err := e.weather.GetHourlyForecast(ctx, restaurant.Location(), days)
	if err != nil {
		e.logger.Warn("weather provider unavailable, using neutral defaults",
			"restaurantId", restaurant.ID().String(),
			"error", err,
		)
		return nil
	}

	byHour := make(map[time.Time]forecast.WeatherObservation, len(hourly))
	for _, h := range hourly {
		byHour[h.Time.Truncate(time.Hour)] = forecast.WeatherObservation{
			Temperature:       h.Temperature,
			FeelsLike:         h.FeelsLike,
			Humidity:          h.Humidity,
			Precipitation:     h.Precipitation,
			PrecipProbability: h.PrecipProbability,
			Snowfall:          h.Snowfall,
			WindSpeed:         h.WindSpeed,
			CloudCover:        h.CloudCover,
		}
	}
	return byHour
}

func (e *Extractor) observationFor(byHour map[time.Time]forecast.WeatherObservation, hour time.Time) forecast.WeatherObservation {
	if obs, ok := byHour[hour]; ok {
		return obs
	}
	return neutralWeather
}

// fetchVolumes pulls lag-window order history. A source failure yields no
// history: the lag features go to zero rather than failing the snapshot.
func (e *Extractor) fetchVolumes(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) []forecast.HourlyVolume {
	history, err := e.volumes.GetHourlyVolumes(ctx, restaurantID, from, to)
	if err != nil {
		e.logger.Warn("volume source unavailable, lag features default to zero",
			"restaurantId", restaurantID.String(),
			"error", err,
		)
		return nil
	}
	return history
}
