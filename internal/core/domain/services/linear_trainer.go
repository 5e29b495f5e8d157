package services

import (
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/mlmodel"
)

// LinearTrainer fits a ridge-regularized linear model by batch gradient
// descent. Dine-in and delivery are fitted as separate targets over the
// same matrix, then the two fits are merged by arithmetic mean into the
// single published artifact.
type LinearTrainer struct{}

// NewLinearTrainer creates a trainer instance.
func NewLinearTrainer() LinearTrainer {
	return LinearTrainer{}
}

// Train fits the linear artifact on an already-normalized training set.
func (t LinearTrainer) Train(set TrainingSet, params mlmodel.ModelParameters) (mlmodel.LinearWeights, error) {
	if err := set.Validate(); err != nil {
		return mlmodel.LinearWeights{}, err
	}
	if err := params.Validate(); err != nil {
		return mlmodel.LinearWeights{}, err
	}

	dineInIntercept, dineInCoefs := t.fit(set.Features, set.DineIn, params)
	deliveryIntercept, deliveryCoefs := t.fit(set.Features, set.Delivery, params)

	names := forecast.FeatureNames()
	coefficients := make(map[string]float64, forecast.FeatureCount)
	for col, name := range names {
		coefficients[name] = (dineInCoefs[col] + deliveryCoefs[col]) / 2
	}

	return mlmodel.LinearWeights{
		Intercept:    (dineInIntercept + deliveryIntercept) / 2,
		Coefficients: coefficients,
	}, nil
}

// fit runs full-batch gradient descent for a fixed iteration count.
// The L2 penalty applies to coefficients only, never the intercept.
func (t LinearTrainer) fit(features [][]float64, target []float64, params mlmodel.ModelParameters) (float64, []float64) {
	rows := float64(len(features))
	cols := len(features[0])

	intercept := 0.0
	coefs := make([]float64, cols)
	residuals := make([]float64, len(features))

	for range params.Iterations() {
		for i, row := range features {
			predicted := intercept
			for col, value := range row {
				predicted += coefs[col] * value
			}
			residuals[i] = predicted - target[i]
		}

		interceptGrad := 0.0
		for _, residual := range residuals {
			interceptGrad += residual
		}
		intercept -= params.LearningRate() * interceptGrad / rows

		for col := range cols {
			grad := 0.0
			for i, row := range features {
				grad += residuals[i] * row[col]
			}
			grad = grad/rows + params.L2Penalty()*coefs[col]
			coefs[col] -= params.LearningRate() * grad
		}
	}
	return intercept, coefs
}

// PredictLinear scores one normalized row with a linear artifact.
func PredictLinear(weights mlmodel.LinearWeights, row []float64) float64 {
	predicted := weights.Intercept
	for col, name := range forecast.FeatureNames() {
		if col >= len(row) {
			break
		}
		predicted += weights.Coefficients[name] * row[col]
	}
	return predicted
}
