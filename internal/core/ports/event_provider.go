package ports

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

// EventProvider fetches local events from an external API. Implementations
// own retries and timeouts; callers treat any error as "no events" and
// proceed with a zero event signal.
type EventProvider interface {
	// GetLocalEvents retrieves events within radiusMiles of the location
	// that overlap [from, to).
	GetLocalEvents(ctx context.Context, location kernel.GeoPoint, radiusMiles float64, from, to time.Time) ([]forecast.LocalEvent, error)
}
