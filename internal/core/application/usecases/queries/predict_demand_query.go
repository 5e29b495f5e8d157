// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS
// architecture. Queries return optimized read models for specific use
// cases.
package queries

import (
	"errors"
	"fmt"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

var (
	ErrPredictDemandQueryIsNotConstructed = errors.New(
		"PredictDemandQuery must be created via NewPredictDemandQuery constructor",
	)
)

// DefaultIntervalLevel is the confidence level used when the caller does
// not request one.
const DefaultIntervalLevel = 0.95

// PredictDemandQuery requests a demand forecast for one restaurant hour.
//
// Example:
//
//	query, err := NewPredictDemandQuery(restaurantID, time.Now().Add(2*time.Hour), 0.95)
//	if err != nil {
//	    return fmt.Errorf("invalid prediction request: %w", err)
//	}
//
//	response, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("expected %.1f orders (%.0f%% confident)\n",
//	    response.DineIn, response.Confidence*100)
type PredictDemandQuery struct { //nolint:recvcheck //using for validation
	restaurantID  kernel.UUID
	hour          time.Time
	intervalLevel float64

	guard guard.ConstructorGuard
}

// NewPredictDemandQuery creates a prediction query. An intervalLevel of 0
// selects DefaultIntervalLevel; otherwise it must lie in (0, 1).
func NewPredictDemandQuery(restaurantID kernel.UUID, hour time.Time, intervalLevel float64) (PredictDemandQuery, error) {
	query := PredictDemandQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setRestaurantID(restaurantID),
		query.setHour(hour),
		query.setIntervalLevel(intervalLevel),
	); err != nil {
		return PredictDemandQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q PredictDemandQuery) Validate() error {
	return q.guard.Validate(ErrPredictDemandQueryIsNotConstructed)
}

// RestaurantID returns the restaurant to predict for.
func (q PredictDemandQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// Hour returns the hour to predict, truncated to the hour boundary.
func (q PredictDemandQuery) Hour() time.Time {
	return q.hour
}

// IntervalLevel returns the requested confidence level.
func (q PredictDemandQuery) IntervalLevel() float64 {
	return q.intervalLevel
}

func (q *PredictDemandQuery) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	q.restaurantID = restaurantID
	return nil
}

func (q *PredictDemandQuery) setHour(hour time.Time) error {
	if hour.IsZero() {
		return errs.NewValueIsRequiredError("hour")
	}

	q.hour = hour.Truncate(time.Hour)
	return nil
}

func (q *PredictDemandQuery) setIntervalLevel(level float64) error {
	if level == 0 {
		q.intervalLevel = DefaultIntervalLevel
		return nil
	}
	if level <= 0 || level >= 1 {
		return errs.NewValueIsOutOfRangeError("intervalLevel", level, 0, 1)
	}

	q.intervalLevel = level
	return nil
}

// PredictDemandQueryResponse is the prediction read model: the demand
// estimate with its confidence, uncertainty interval, and the model
// version that produced it.
type PredictDemandQueryResponse struct {
	RestaurantID  kernel.UUID
	Hour          time.Time
	DineIn        float64
	Delivery      float64
	Confidence    float64
	IntervalLower float64
	IntervalUpper float64
	IntervalLevel float64
	ModelVersion  int
	ModelType     string
}

// String renders a compact operator-facing summary.
func (r PredictDemandQueryResponse) String() string {
	return fmt.Sprintf("%.1f orders at %s [%.1f, %.1f] (model v%d)",
		r.DineIn, r.Hour.Format(time.RFC3339), r.IntervalLower, r.IntervalUpper, r.ModelVersion)
}
