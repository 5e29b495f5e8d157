// Package restaurantrepo provides data transfer objects and mapping
// functions for restaurant persistence.
package restaurantrepo

import (
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// RestaurantDTO represents the database structure for persisting
// restaurant aggregates.
type RestaurantDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string
	Latitude          float64
	Longitude         float64
	EventRadiusMiles  float64
	MinTrainingPoints int
}

// TableName specifies the database table name for restaurants.
func (RestaurantDTO) TableName() string {
	return "restaurants"
}

// fromDomain converts a restaurant aggregate to its database representation.
func fromDomain(restaurant *forecast.Restaurant) RestaurantDTO {
	return RestaurantDTO{
		ID:                restaurant.ID().Bytes(),
		Name:              restaurant.Name(),
		Latitude:          restaurant.Location().Latitude(),
		Longitude:         restaurant.Location().Longitude(),
		EventRadiusMiles:  restaurant.EventRadiusMiles(),
		MinTrainingPoints: restaurant.MinTrainingPoints(),
	}
}

// toDomain converts a database DTO back to a restaurant aggregate using
// RestoreRestaurant.
func toDomain(dto RestaurantDTO) (*forecast.Restaurant, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	return forecast.RestoreRestaurant(id, dto.Name, location, dto.EventRadiusMiles, dto.MinTrainingPoints)
}
