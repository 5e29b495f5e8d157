// Package eventrepo provides data transfer objects and mapping functions
// for cached local events. Events carry no domain identity; rows are
// replaced wholesale on each provider refresh.
package eventrepo

import (
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EventDTO represents the database structure for cached local events.
type EventDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;index:idx_local_events_restaurant_window"`
	Name         string
	Category     string
	Attendance   int
	Rank         int
	Latitude     float64
	Longitude    float64
	StartsAt     time.Time `gorm:"index:idx_local_events_restaurant_window"`
	EndsAt       time.Time `gorm:"index"`
}

// TableName specifies the database table name for cached events.
func (EventDTO) TableName() string {
	return "local_events"
}

// fromDomain converts a local event to its database representation. Each
// cached row gets a fresh identifier; identity is not meaningful across
// provider refreshes.
func fromDomain(restaurantID kernel.UUID, event forecast.LocalEvent) EventDTO {
	return EventDTO{
		ID:           kernel.NewUUID().Bytes(),
		RestaurantID: restaurantID.Bytes(),
		Name:         event.Name,
		Category:     event.Category,
		Attendance:   event.Attendance,
		Rank:         event.Rank,
		Latitude:     event.Venue.Latitude(),
		Longitude:    event.Venue.Longitude(),
		StartsAt:     event.StartsAt,
		EndsAt:       event.EndsAt,
	}
}

// toDomain converts a database DTO back to a local event.
func toDomain(dto EventDTO) (forecast.LocalEvent, error) {
	venue, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return forecast.LocalEvent{}, err
	}

	return forecast.LocalEvent{
		Name:       dto.Name,
		Category:   dto.Category,
		Attendance: dto.Attendance,
		Rank:       dto.Rank,
		Venue:      venue,
		StartsAt:   dto.StartsAt,
		EndsAt:     dto.EndsAt,
	}, nil
}
