package queries

import (
	"context"

	"forecast/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListRestaurantsQueryHandler retrieves restaurant information from the
// database. Uses direct SQL queries for optimal read performance in the
// CQRS pattern.
type ListRestaurantsQueryHandler struct {
	db *gorm.DB
}

// NewListRestaurantsQueryHandler creates a handler for restaurant
// retrieval queries. Requires a GORM database connection for query
// execution.
func NewListRestaurantsQueryHandler(db *gorm.DB) ListRestaurantsQueryHandler {
	return ListRestaurantsQueryHandler{db: db}
}

// Handle executes the query to retrieve all restaurants.
// Returns a slice of restaurant read models sorted by name.
func (h ListRestaurantsQueryHandler) Handle(
	ctx context.Context,
	query ListRestaurantsQuery,
) ([]ListRestaurantsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	restaurants := make([]ListRestaurantsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			latitude,
			longitude,
			event_radius_miles,
			min_training_points
		FROM restaurants
		ORDER BY name
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var restaurant ListRestaurantsQueryResponse
		var latitude, longitude float64
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&restaurant.Name,
			&latitude,
			&longitude,
			&restaurant.EventRadiusMiles,
			&restaurant.MinTrainingPoints,
		)
		if err != nil {
			return nil, err
		}

		restaurantID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		restaurant.ID = restaurantID

		location, locErr := kernel.NewGeoPoint(latitude, longitude)
		if locErr != nil {
			return nil, locErr
		}
		restaurant.Location = location
		restaurants = append(restaurants, restaurant)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}
