// Package weatherapi implements the weather provider port against an
// Open-Meteo-compatible forecast API. The hourly response arrives as
// parallel arrays indexed by timestamp; the provider zips them into the
// domain's hourly contract.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

const (
	// DefaultBaseURL is the public Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	requestTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second

	hourlyFields = "temperature_2m,apparent_temperature,relative_humidity_2m," +
		"precipitation,precipitation_probability,snowfall,wind_speed_10m,cloud_cover"
)

// hourlyResponse mirrors the API's parallel-array hourly block.
type hourlyResponse struct {
	Hourly struct {
		Time                     []int64   `json:"time"`
		Temperature2M            []float64 `json:"temperature_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		RelativeHumidity2M       []float64 `json:"relative_humidity_2m"`
		Precipitation            []float64 `json:"precipitation"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Snowfall                 []float64 `json:"snowfall"`
		WindSpeed10M             []float64 `json:"wind_speed_10m"`
		CloudCover               []float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

// Provider fetches hourly forecasts over HTTP with bounded retries.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewProvider creates a weather provider. An empty baseURL selects
// DefaultBaseURL.
func NewProvider(baseURL string, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger.With("component", "weather-provider"),
	}
}

// GetHourlyForecast retrieves hourly forecasts for the location covering
// the next days days.
func (p *Provider) GetHourlyForecast(ctx context.Context, location kernel.GeoPoint, days int) ([]forecast.HourlyWeather, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}
	if days < 1 {
		days = 1
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(location.Latitude(), 'f', 4, 64))
	query.Set("longitude", strconv.FormatFloat(location.Longitude(), 'f', 4, 64))
	query.Set("forecast_days", strconv.Itoa(days))
	query.Set("hourly", hourlyFields)
	query.Set("timeformat", "unixtime")

	requestURL := fmt.Sprintf("%s?%s", p.baseURL, query.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			p.logger.Debug("retrying weather request", "attempt", attempt)
		}

		response, err := p.fetch(ctx, requestURL)
		if err != nil {
			lastErr = err
			continue
		}
		return zipHourly(response)
	}

	return nil, fmt.Errorf("weather request failed after %d attempts: %w", maxRetries, lastErr)
}

func (p *Provider) fetch(ctx context.Context, requestURL string) (*hourlyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API returned %d: %s", resp.StatusCode, body)
	}

	var parsed hourlyResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}
	return &parsed, nil
}

// zipHourly converts the parallel arrays into per-hour records. Arrays
// shorter than the time axis leave the affected fields at zero rather
// than failing the whole forecast.
func zipHourly(response *hourlyResponse) ([]forecast.HourlyWeather, error) {
	hourly := response.Hourly
	weather := make([]forecast.HourlyWeather, 0, len(hourly.Time))

	for i, unix := range hourly.Time {
		weather = append(weather, forecast.HourlyWeather{
			Time:              time.Unix(unix, 0).UTC(),
			Temperature:       at(hourly.Temperature2M, i),
			FeelsLike:         at(hourly.ApparentTemperature, i),
			Humidity:          at(hourly.RelativeHumidity2M, i),
			Precipitation:     at(hourly.Precipitation, i),
			PrecipProbability: at(hourly.PrecipitationProbability, i),
			Snowfall:          at(hourly.Snowfall, i),
			WindSpeed:         at(hourly.WindSpeed10M, i),
			CloudCover:        at(hourly.CloudCover, i),
		})
	}
	return weather, nil
}

func at(values []float64, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return values[i]
}
