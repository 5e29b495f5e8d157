package queries

import (
	"errors"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/guard"
)

var (
	ErrGetFeatureImportanceQueryIsNotConstructed = errors.New(
		"GetFeatureImportanceQuery must be created via NewGetFeatureImportanceQuery constructor",
	)
)

// GetFeatureImportanceQuery retrieves the normalized feature importance
// ranking of a restaurant's active model, explaining which signals drive
// its forecasts.
type GetFeatureImportanceQuery struct { //nolint:recvcheck //using for validation
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetFeatureImportanceQuery creates an importance query.
func NewGetFeatureImportanceQuery(restaurantID kernel.UUID) (GetFeatureImportanceQuery, error) {
	query := GetFeatureImportanceQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setRestaurantID(restaurantID); err != nil {
		return GetFeatureImportanceQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetFeatureImportanceQuery) Validate() error {
	return q.guard.Validate(ErrGetFeatureImportanceQueryIsNotConstructed)
}

// RestaurantID returns the restaurant whose model is explained.
func (q GetFeatureImportanceQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

func (q *GetFeatureImportanceQuery) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	q.restaurantID = restaurantID
	return nil
}

// FeatureImportanceRow is one feature's share of the model's attention.
type FeatureImportanceRow struct {
	Feature string
	Score   float64
}

// GetFeatureImportanceQueryResponse is the importance read model: the
// ranked features plus the model version they describe.
type GetFeatureImportanceQueryResponse struct {
	RestaurantID kernel.UUID
	ModelVersion int
	ModelType    string
	Features     []FeatureImportanceRow
}
