package forecast

import (
	"errors"
	"fmt"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

// ErrSnapshotIsNotConstructed is returned when using an improperly
// initialized FeatureSnapshot.
var ErrSnapshotIsNotConstructed = errors.New(
	"FeatureSnapshot must be created via NewFeatureSnapshot constructor")

// FeatureSnapshot is a persisted raw hourly record of every signal the
// feature pipeline saw for one restaurant and hour: temporal context,
// weather, local events, and lagged demand. Actual dine-in and delivery
// volumes are recorded later, once the hour has passed; a labeled snapshot
// becomes a training example.
//
// Invariants:
//   - capturedAt is truncated to the hour
//   - actuals are recorded at most once and are non-negative
type FeatureSnapshot struct {
	id           kernel.UUID
	restaurantID kernel.UUID
	capturedAt   time.Time
	isHoliday    bool
	weather      WeatherObservation
	events       EventSignal
	lags         LagSignal

	actualDineIn   *float64
	actualDelivery *float64

	guard guard.ConstructorGuard
}

// NewFeatureSnapshot creates an unlabeled snapshot for one hour.
func NewFeatureSnapshot(
	id kernel.UUID,
	restaurantID kernel.UUID,
	capturedAt time.Time,
	isHoliday bool,
	weather WeatherObservation,
	events EventSignal,
	lags LagSignal,
) (*FeatureSnapshot, error) {
	if err := errors.Join(id.Validate(), restaurantID.Validate()); err != nil {
		return nil, err
	}
	if capturedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("capturedAt")
	}

	return &FeatureSnapshot{
		id:           id,
		restaurantID: restaurantID,
		capturedAt:   capturedAt.Truncate(time.Hour),
		isHoliday:    isHoliday,
		weather:      weather,
		events:       events,
		lags:         lags,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// RestoreFeatureSnapshot reconstructs a snapshot from persistent storage,
// including any recorded actuals.
func RestoreFeatureSnapshot(
	id kernel.UUID,
	restaurantID kernel.UUID,
	capturedAt time.Time,
	isHoliday bool,
	weather WeatherObservation,
	events EventSignal,
	lags LagSignal,
	actualDineIn *float64,
	actualDelivery *float64,
) (*FeatureSnapshot, error) {
	snapshot, err := NewFeatureSnapshot(id, restaurantID, capturedAt, isHoliday, weather, events, lags)
	if err != nil {
		return nil, err
	}

	snapshot.actualDineIn = actualDineIn
	snapshot.actualDelivery = actualDelivery
	return snapshot, nil
}

// ID returns the snapshot identifier.
func (s *FeatureSnapshot) ID() kernel.UUID {
	return s.id
}

// RestaurantID returns the owning restaurant's identifier.
func (s *FeatureSnapshot) RestaurantID() kernel.UUID {
	return s.restaurantID
}

// CapturedAt returns the hour this snapshot describes.
func (s *FeatureSnapshot) CapturedAt() time.Time {
	return s.capturedAt
}

// IsHoliday reports whether the snapshot hour fell on a holiday.
func (s *FeatureSnapshot) IsHoliday() bool {
	return s.isHoliday
}

// Weather returns the raw weather observation.
func (s *FeatureSnapshot) Weather() WeatherObservation {
	return s.weather
}

// Events returns the aggregated local-event signal.
func (s *FeatureSnapshot) Events() EventSignal {
	return s.events
}

// Lags returns the lagged demand signal.
func (s *FeatureSnapshot) Lags() LagSignal {
	return s.lags
}

// ActualDineIn returns the recorded dine-in volume, nil while unlabeled.
func (s *FeatureSnapshot) ActualDineIn() *float64 {
	return s.actualDineIn
}

// ActualDelivery returns the recorded delivery volume, nil while unlabeled.
func (s *FeatureSnapshot) ActualDelivery() *float64 {
	return s.actualDelivery
}

// IsLabeled reports whether both actual volumes have been recorded,
// making the snapshot usable as a training example.
func (s *FeatureSnapshot) IsLabeled() bool {
	return s.actualDineIn != nil && s.actualDelivery != nil
}

// RecordActuals fills in the observed volumes for the snapshot hour,
// turning the snapshot into a training label. Volumes must be non-negative.
func (s *FeatureSnapshot) RecordActuals(dineIn, delivery float64) error {
	if dineIn < 0 || delivery < 0 {
		return errs.NewValueIsInvalidErrorWithCause("actual volumes",
			fmt.Errorf("dine-in %.2f and delivery %.2f must be non-negative", dineIn, delivery))
	}

	s.actualDineIn = &dineIn
	s.actualDelivery = &delivery
	return nil
}

// Validate ensures the snapshot was created through a constructor.
func (s *FeatureSnapshot) Validate() error {
	if s == nil {
		return ErrSnapshotIsNotConstructed
	}
	return s.guard.Validate(ErrSnapshotIsNotConstructed)
}
