// Package eventsapi implements the event provider port against a
// PredictHQ-style local events API.
package eventsapi

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
	requestTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
)

// eventsResponse mirrors the API's result envelope.
type eventsResponse struct {
	Results []eventResult `json:"results"`
}

type eventResult struct {
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	PredictedAttendance int     `json:"phq_attendance"`
	Rank              int       `json:"local_rank"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Location          []float64 `json:"location"` // [longitude, latitude]
}

// Provider fetches local events over HTTP with bounded retries.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewProvider creates an events provider for the given endpoint and key.
func NewProvider(baseURL, apiKey string, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger.With("component", "events-provider"),
	}
}

// GetLocalEvents retrieves events within radiusMiles of the location
// overlapping [from, to). Events with unparseable venues are skipped.
func (p *Provider) GetLocalEvents(
	ctx context.Context,
	location kernel.GeoPoint,
	radiusMiles float64,
	from, to time.Time,
) ([]forecast.LocalEvent, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("within", fmt.Sprintf("%.1fmi@%.4f,%.4f", radiusMiles, location.Latitude(), location.Longitude()))
	query.Set("active.gte", from.UTC().Format(time.RFC3339))
	query.Set("active.lt", to.UTC().Format(time.RFC3339))
	query.Set("limit", strconv.Itoa(200))

	requestURL := fmt.Sprintf("%s?%s", p.baseURL, query.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			p.logger.Debug("retrying events request", "attempt", attempt)
		}

		response, err := p.fetch(ctx, requestURL)
		if err != nil {
			lastErr = err
			continue
		}
		return p.mapResults(response), nil
	}

	return nil, fmt.Errorf("events request failed after %d attempts: %w", maxRetries, lastErr)
}

func (p *Provider) fetch(ctx context.Context, requestURL string) (*eventsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("events API returned %d: %s", resp.StatusCode, body)
	}

	var parsed eventsResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding events response: %w", err)
	}
	return &parsed, nil
}

func (p *Provider) mapResults(response *eventsResponse) []forecast.LocalEvent {
	events := make([]forecast.LocalEvent, 0, len(response.Results))
	for _, result := range response.Results {
		if len(result.Location) != 2 {
			continue
		}

		venue, err := kernel.NewGeoPoint(result.Location[1], result.Location[0])
		if err != nil {
			p.logger.Warn("skipping event with invalid venue",
				"event", result.Title,
				"error", err,
			)
			continue
		}

		events = append(events, forecast.LocalEvent{
			Name:       result.Title,
			Category:   result.Category,
			Attendance: result.PredictedAttendance,
			Rank:       result.Rank,
			Venue:      venue,
			StartsAt:   result.Start,
			EndsAt:     result.End,
		})
	}
	return events
}
