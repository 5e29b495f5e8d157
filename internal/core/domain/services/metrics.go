package services

import (
	"fmt"
	"math"

	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/errs"
)

// ComputeTrainingMetrics summarizes prediction accuracy over matched
// actual/predicted pairs. MAPE is in percent and counts only rows with a
// positive actual, so closed hours do not blow it up. R2 is 0 when the
// actuals carry no variance.
func ComputeTrainingMetrics(actual, predicted []float64) (mlmodel.TrainingMetrics, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return mlmodel.TrainingMetrics{}, errs.NewValueIsInvalidErrorWithCause("samples",
			fmt.Errorf("got %d actuals and %d predictions", len(actual), len(predicted)))
	}

	count := float64(len(actual))
	absSum, sqSum, actualSum := 0.0, 0.0, 0.0
	mapeSum, mapeCount := 0.0, 0

	for i := range actual {
		diff := predicted[i] - actual[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		actualSum += actual[i]
		if actual[i] > 0 {
			mapeSum += math.Abs(diff) / actual[i]
			mapeCount++
		}
	}

	metrics := mlmodel.TrainingMetrics{
		MAE:  absSum / count,
		RMSE: math.Sqrt(sqSum / count),
	}
	if mapeCount > 0 {
		metrics.MAPE = mapeSum / float64(mapeCount) * 100
	}

	mean := actualSum / count
	ssTot := 0.0
	for i := range actual {
		diff := actual[i] - mean
		ssTot += diff * diff
	}
	if ssTot > 0 {
		metrics.R2 = 1 - sqSum/ssTot
	}
	return metrics, nil
}
