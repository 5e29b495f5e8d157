package ports

import (
	"context"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
)

// EventRepository defines the persistence contract for fetched local
// events. Events are cached per restaurant so the feature pipeline does
// not hit the provider for every hour.
type EventRepository interface {
	// ReplaceForRestaurant atomically swaps the restaurant's cached events
	// with a fresh provider fetch covering [from, to).
	ReplaceForRestaurant(ctx context.Context, restaurantID kernel.UUID, events []forecast.LocalEvent, from, to time.Time) error

	// GetOverlapping retrieves cached events overlapping [from, to).
	GetOverlapping(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]forecast.LocalEvent, error)

	// DeleteEndedBefore removes events that ended before the cutoff and
	// returns how many were removed.
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
