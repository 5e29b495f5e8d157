package ports

import (
	"context"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

// WeatherProvider fetches hourly weather forecasts from an external API.
// Implementations own retries and timeouts; callers treat any error as
// "no weather available" and fall back to neutral defaults.
type WeatherProvider interface {
	// GetHourlyForecast retrieves hourly forecasts for the location
	// covering the next days days, starting from the current hour.
	GetHourlyForecast(ctx context.Context, location kernel.GeoPoint, days int) ([]forecast.HourlyWeather, error)
}
