package mlmodel

import (
	"fmt"

	"forecast/internal/pkg/errs"
)

// Drift thresholds applied by TrendFromDegradation. Degradation is the
// relative change of live MAE over training MAE.
const (
	degradingThreshold = 0.2
	improvingThreshold = -0.1
)

// AccuracyTrend classifies the direction of a model's live accuracy
// relative to its training-time accuracy.
type AccuracyTrend int

const (
	// UnknownTrend represents an invalid or undefined trend.
	UnknownTrend AccuracyTrend = iota

	// Improving means live error is meaningfully below training error.
	Improving

	// Stable means live error tracks training error.
	Stable

	// Degrading means live error has drifted above training error far
	// enough to warrant retraining.
	Degrading
)

func getTrendStrings() map[AccuracyTrend]string {
	return map[AccuracyTrend]string{
		UnknownTrend: "UNKNOWN",
		Improving:    "IMPROVING",
		Stable:       "STABLE",
		Degrading:    "DEGRADING",
	}
}

func getValidTrendStrings() map[AccuracyTrend]string {
	//nolint:exhaustive // UnknownTrend is intentionally excluded as it's invalid
	return map[AccuracyTrend]string{
		Improving: "IMPROVING",
		Stable:    "STABLE",
		Degrading: "DEGRADING",
	}
}

// TrendFromString parses the persisted string form of a trend.
func TrendFromString(s string) (AccuracyTrend, error) {
	for trend, str := range getValidTrendStrings() {
		if str == s {
			return trend, nil
		}
	}
	return UnknownTrend, errs.NewValueIsInvalidErrorWithCause("accuracyTrend",
		fmt.Errorf("%q is not a valid accuracy trend", s))
}

// TrendFromDegradation classifies a relative degradation value:
// Degrading above 0.2, Improving below -0.1, Stable in between. The 0.2
// boundary itself is Stable.
func TrendFromDegradation(degradation float64) AccuracyTrend {
	switch {
	case degradation > degradingThreshold:
		return Degrading
	case degradation < improvingThreshold:
		return Improving
	default:
		return Stable
	}
}

// Validate checks that the trend is one of the three classifications.
func (t AccuracyTrend) Validate() error {
	if _, ok := getValidTrendStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("accuracyTrend",
			fmt.Errorf("%d is not a valid accuracy trend", t))
	}
	return nil
}

// String implements fmt.Stringer using the persisted representation.
func (t AccuracyTrend) String() string {
	if str, ok := getTrendStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}
