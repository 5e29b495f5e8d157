package services

import (
	"math/rand"

	"forecast/internal/core/domain/model/mlmodel"
)

// EnsembleTrainer trains both base models and blends them with weights
// proportional to inverse in-sample MAPE, so the more accurate base model
// carries more of the final prediction.
type EnsembleTrainer struct {
	linear        LinearTrainer
	gradientBoost GradientBoostTrainer
}

// NewEnsembleTrainer creates a trainer sharing one random source with its
// gradient-boost component.
func NewEnsembleTrainer(rng *rand.Rand) EnsembleTrainer {
	return EnsembleTrainer{
		linear:        NewLinearTrainer(),
		gradientBoost: NewGradientBoostTrainer(rng),
	}
}

// Train fits both base artifacts and computes the blend weights.
func (t EnsembleTrainer) Train(set TrainingSet, params mlmodel.ModelParameters) (mlmodel.EnsembleWeights, error) {
	linearWeights, err := t.linear.Train(set, params)
	if err != nil {
		return mlmodel.EnsembleWeights{}, err
	}
	gbWeights, err := t.gradientBoost.Train(set, params)
	if err != nil {
		return mlmodel.EnsembleWeights{}, err
	}

	target := set.MergedTarget()
	linearPredictions := make([]float64, len(target))
	gbPredictions := make([]float64, len(target))
	for i, row := range set.Features {
		linearPredictions[i] = PredictLinear(linearWeights, row)
		gbPredictions[i] = PredictGradientBoost(gbWeights, row)
	}

	linearMetrics, err := ComputeTrainingMetrics(target, linearPredictions)
	if err != nil {
		return mlmodel.EnsembleWeights{}, err
	}
	gbMetrics, err := ComputeTrainingMetrics(target, gbPredictions)
	if err != nil {
		return mlmodel.EnsembleWeights{}, err
	}

	linearWeight, gbWeight := blendWeights(linearMetrics.MAPE, gbMetrics.MAPE)
	return mlmodel.EnsembleWeights{
		Linear:              linearWeights,
		GradientBoost:       gbWeights,
		LinearWeight:        linearWeight,
		GradientBoostWeight: gbWeight,
	}, nil
}

// blendWeights converts two MAPE values into inverse-error blend weights
// summing to 1. When neither base model reports error, the blend is even.
func blendWeights(linearMAPE, gbMAPE float64) (float64, float64) {
	linearInverse, gbInverse := 0.0, 0.0
	if linearMAPE > 0 {
		linearInverse = 1 / linearMAPE
	}
	if gbMAPE > 0 {
		gbInverse = 1 / gbMAPE
	}

	total := linearInverse + gbInverse
	if total == 0 {
		return 0.5, 0.5
	}

	// A zero-MAPE model is perfect in-sample; it takes the whole blend.
	if linearMAPE == 0 && gbMAPE > 0 {
		return 1, 0
	}
	if gbMAPE == 0 && linearMAPE > 0 {
		return 0, 1
	}
	return linearInverse / total, gbInverse / total
}

// PredictEnsemble scores one normalized row with an ensemble artifact.
func PredictEnsemble(weights mlmodel.EnsembleWeights, row []float64) float64 {
	return weights.LinearWeight*PredictLinear(weights.Linear, row) +
		weights.GradientBoostWeight*PredictGradientBoost(weights.GradientBoost, row)
}
