package services

import (
	"fmt"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/pkg/errs"
)

// TrainingSet is the normalized design matrix plus per-target labels the
// trainers consume. All slices share one length.
type TrainingSet struct {
	Features [][]float64
	DineIn   []float64
	Delivery []float64
}

// MergedTarget returns the per-row mean of the two demand series. The
// gradient-boost trainer and the accuracy metrics fit this single series.
func (s TrainingSet) MergedTarget() []float64 {
	merged := make([]float64, len(s.DineIn))
	for i := range merged {
		merged[i] = (s.DineIn[i] + s.Delivery[i]) / 2
	}
	return merged
}

// Len returns the number of training examples.
func (s TrainingSet) Len() int {
	return len(s.Features)
}

// Validate checks the matrix is non-empty, rectangular at FeatureCount
// columns, and aligned with both label series.
func (s TrainingSet) Validate() error {
	if len(s.Features) == 0 {
		return errs.NewValueIsRequiredError("features")
	}
	if len(s.DineIn) != len(s.Features) || len(s.Delivery) != len(s.Features) {
		return errs.NewValueIsInvalidErrorWithCause("training set",
			fmt.Errorf("%d feature rows, %d dine-in labels, %d delivery labels",
				len(s.Features), len(s.DineIn), len(s.Delivery)))
	}
	for _, row := range s.Features {
		if len(row) != forecast.FeatureCount {
			return errs.NewValueIsInvalidErrorWithCause("training set",
				fmt.Errorf("expected %d features per row, got %d", forecast.FeatureCount, len(row)))
		}
	}
	return nil
}
