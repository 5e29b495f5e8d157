package queries

import (
	"errors"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

var (
	ErrPredictDayQueryIsNotConstructed = errors.New(
		"PredictDayQuery must be created via NewPredictDayQuery constructor",
	)
)

// PredictDayQuery requests demand forecasts for every hour of one
// restaurant day. Callers that need a single hour use PredictDemandQuery
// instead.
type PredictDayQuery struct { //nolint:recvcheck //using for validation
	restaurantID  kernel.UUID
	day           time.Time
	intervalLevel float64

	guard guard.ConstructorGuard
}

// NewPredictDayQuery creates a whole-day prediction query. The day is
// truncated to midnight; an intervalLevel of 0 selects
// DefaultIntervalLevel, otherwise it must lie in (0, 1).
func NewPredictDayQuery(restaurantID kernel.UUID, day time.Time, intervalLevel float64) (PredictDayQuery, error) {
	query := PredictDayQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setRestaurantID(restaurantID),
		query.setDay(day),
		query.setIntervalLevel(intervalLevel),
	); err != nil {
		return PredictDayQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q PredictDayQuery) Validate() error {
	return q.guard.Validate(ErrPredictDayQueryIsNotConstructed)
}

// RestaurantID returns the restaurant to predict for.
func (q PredictDayQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// Day returns the day to predict, truncated to midnight.
func (q PredictDayQuery) Day() time.Time {
	return q.day
}

// IntervalLevel returns the requested confidence level.
func (q PredictDayQuery) IntervalLevel() float64 {
	return q.intervalLevel
}

func (q *PredictDayQuery) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	q.restaurantID = restaurantID
	return nil
}

func (q *PredictDayQuery) setDay(day time.Time) error {
	if day.IsZero() {
		return errs.NewValueIsRequiredError("day")
	}

	year, month, dayOfMonth := day.Date()
	q.day = time.Date(year, month, dayOfMonth, 0, 0, 0, 0, day.Location())
	return nil
}

func (q *PredictDayQuery) setIntervalLevel(level float64) error {
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

// HourlyDemand is one hour's slice of a whole-day forecast.
type HourlyDemand struct {
	Hour          time.Time
	DineIn        float64
	Delivery      float64
	Confidence    float64
	IntervalLower float64
	IntervalUpper float64
}

// PredictDayQueryResponse is the whole-day prediction read model: one
// entry per hour of the requested day, all produced by the same model
// version.
type PredictDayQueryResponse struct {
	RestaurantID  kernel.UUID
	Day           time.Time
	IntervalLevel float64
	ModelVersion  int
	ModelType     string
	Hours         []HourlyDemand
}
