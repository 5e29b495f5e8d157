package forecast

import (
	"errors"
	"fmt"
	"time"

	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

// ErrFeatureVectorIsNotConstructed is returned when using an improperly
// initialized FeatureVector.
var ErrFeatureVectorIsNotConstructed = errors.New(
	"FeatureVector must be created via NewFeatureVector constructor")

// FeatureVector is the model-ready numeric input for one hour slot.
// Its values are ordered exactly as FeatureNames; length is always
// FeatureCount. FeatureVector is immutable after construction.
type FeatureVector struct {
	hour     time.Time
	hourSlot int
	features []float64

	guard guard.ConstructorGuard
}

// NewFeatureVector creates a vector for the given hour. The features slice
// must have exactly FeatureCount entries in canonical order; it is copied.
func NewFeatureVector(hour time.Time, features []float64) (FeatureVector, error) {
	if len(features) != FeatureCount {
		return FeatureVector{}, errs.NewValueIsInvalidErrorWithCause("features",
			fmt.Errorf("expected %d features, got %d", FeatureCount, len(features)))
	}

	values := make([]float64, FeatureCount)
	copy(values, features)

	return FeatureVector{
		hour:     hour,
		hourSlot: hour.Hour(),
		features: values,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Hour returns the hour this vector describes.
func (v FeatureVector) Hour() time.Time {
	return v.hour
}

// HourSlot returns the 0-23 hour slot.
func (v FeatureVector) HourSlot() int {
	return v.hourSlot
}

// Features returns a copy of the feature values in canonical order.
func (v FeatureVector) Features() []float64 {
	values := make([]float64, len(v.features))
	copy(values, v.features)
	return values
}

// Names returns the canonical feature name list matching Features.
func (v FeatureVector) Names() []string {
	return FeatureNames()
}

// At returns the value of a named feature.
func (v FeatureVector) At(name string) (float64, error) {
	i, ok := FeatureIndex(name)
	if !ok {
		return 0, errs.NewValueIsInvalidError("feature name " + name)
	}
	return v.features[i], nil
}

// Validate ensures the vector was created via NewFeatureVector.
func (v FeatureVector) Validate() error {
	return v.guard.Validate(ErrFeatureVectorIsNotConstructed)
}
