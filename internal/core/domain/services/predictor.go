package services

import (
	"math"

	"forecast/internal/core/domain/model/mlmodel"
)

// Interval bounds a prediction at a confidence level. Lower never goes
// below zero: negative demand is meaningless.
type Interval struct {
	Lower float64
	Upper float64
	Level float64
}

// Prediction is a scored demand estimate for one hour. The dine-in and
// delivery figures share one merged estimate; the split contract is kept
// for callers that budget the two channels separately.
type Prediction struct {
	DineIn     float64
	Delivery   float64
	Confidence float64
	Interval   Interval
}

const (
	minConfidence = 0.3
	maxConfidence = 0.95
	// intervalWidening inflates the training MAE into an interval
	// half-width, compensating for in-sample optimism.
	intervalWidening = 1.5
)

// zScore maps the supported confidence levels to standard-normal critical
// values. Unsupported levels fall back to 95%.
func zScore(level float64) float64 {
	switch level {
	case 0.90:
		return 1.645
	case 0.99:
		return 2.576
	default:
		return 1.96
	}
}

// Predictor scores a normalized feature row against a trained model and
// wraps the raw estimate with confidence and an uncertainty interval.
type Predictor struct{}

// NewPredictor creates a predictor instance.
func NewPredictor() Predictor {
	return Predictor{}
}

// Predict scores one normalized row. The row must already carry the
// model's fitted normalization; the predictor never scales.
func (p Predictor) Predict(model *mlmodel.MLModel, row []float64, intervalLevel float64) (Prediction, error) {
	if err := model.Validate(); err != nil {
		return Prediction{}, err
	}

	estimate, err := p.score(model.Weights(), row)
	if err != nil {
		return Prediction{}, err
	}
	estimate = math.Max(0, estimate)

	metrics := model.Metrics()
	halfWidth := zScore(intervalLevel) * metrics.MAE * intervalWidening

	return Prediction{
		DineIn:     estimate,
		Delivery:   estimate,
		Confidence: confidenceFromMAPE(metrics.MAPE),
		Interval: Interval{
			Lower: math.Max(0, estimate-halfWidth),
			Upper: estimate + halfWidth,
			Level: intervalLevel,
		},
	}, nil
}

// score dispatches on the weights tag.
func (p Predictor) score(weights mlmodel.Weights, row []float64) (float64, error) {
	switch weights.ModelType() {
	case mlmodel.Linear:
		linear, err := weights.Linear()
		if err != nil {
			return 0, err
		}
		return PredictLinear(linear, row), nil
	case mlmodel.GradientBoost:
		gb, err := weights.GradientBoost()
		if err != nil {
			return 0, err
		}
		return PredictGradientBoost(gb, row), nil
	default:
		ensemble, err := weights.Ensemble()
		if err != nil {
			return 0, err
		}
		return PredictEnsemble(ensemble, row), nil
	}
}

// confidenceFromMAPE converts the training error into a [0.3, 0.95]
// confidence score. A perfect model never claims certainty, and a bad one
// still reports the floor instead of zero.
func confidenceFromMAPE(mape float64) float64 {
	confidence := 1 - mape/100
	return math.Max(minConfidence, math.Min(maxConfidence, confidence))
}
