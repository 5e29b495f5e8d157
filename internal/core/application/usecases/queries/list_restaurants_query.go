package queries

import (
	"errors"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/guard"
)

var (
	ErrListRestaurantsQueryIsNotConstructed = errors.New(
		"ListRestaurantsQuery must be created via NewListRestaurantsQuery constructor",
	)
)

// ListRestaurantsQuery retrieves every restaurant enrolled in the
// forecasting fleet. Returns identities, locations, and enrollment
// settings for monitoring and operations tooling.
type ListRestaurantsQuery struct {
	guard guard.ConstructorGuard
}

// NewListRestaurantsQuery creates a query to retrieve all restaurants.
// This is a parameterless query that fetches the complete fleet.
func NewListRestaurantsQuery() ListRestaurantsQuery {
	return ListRestaurantsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q ListRestaurantsQuery) Validate() error {
	return q.guard.Validate(ErrListRestaurantsQueryIsNotConstructed)
}

// ListRestaurantsQueryResponse represents restaurant information in the
// read model.
type ListRestaurantsQueryResponse struct {
	ID                kernel.UUID
	Name              string
	Location          kernel.GeoPoint
	EventRadiusMiles  float64
	MinTrainingPoints int
}
