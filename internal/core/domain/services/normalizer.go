package services

import (
	"fmt"
	"math"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/errs"
)

// Normalizer fits and applies per-feature z-score statistics. Binary
// features (one-hots and flags) are never scaled, and a constant column
// passes through unchanged, so applying fitted statistics is safe for any
// row shaped like the training matrix.
type Normalizer struct{}

// NewNormalizer creates a normalizer instance.
func NewNormalizer() Normalizer {
	return Normalizer{}
}

// Fit computes means and population standard deviations over the rows.
// Binary positions get zero statistics so Apply skips them.
func (n Normalizer) Fit(rows [][]float64) (mlmodel.Normalization, error) {
	if len(rows) == 0 {
		return mlmodel.Normalization{}, errs.NewValueIsRequiredError("rows")
	}
	for _, row := range rows {
		if len(row) != forecast.FeatureCount {
			return mlmodel.Normalization{}, errs.NewValueIsInvalidErrorWithCause("rows",
				fmt.Errorf("expected %d features per row, got %d", forecast.FeatureCount, len(row)))
		}
	}

	stats := mlmodel.Normalization{
		Means: make([]float64, forecast.FeatureCount),
		Stds:  make([]float64, forecast.FeatureCount),
	}

	for col := range forecast.FeatureCount {
		if forecast.IsBinaryFeature(col) {
			continue
		}

		sum := 0.0
		for _, row := range rows {
			sum += row[col]
		}
		mean := sum / float64(len(rows))

		variance := 0.0
		for _, row := range rows {
			diff := row[col] - mean
			variance += diff * diff
		}

		stats.Means[col] = mean
		stats.Stds[col] = math.Sqrt(variance / float64(len(rows)))
	}
	return stats, nil
}

// Apply z-scores one row in place-free fashion, returning a new slice.
// Binary features and zero-deviation columns pass through unchanged.
func (n Normalizer) Apply(stats mlmodel.Normalization, row []float64) ([]float64, error) {
	if len(stats.Means) != len(row) || len(stats.Stds) != len(row) {
		return nil, errs.NewValueIsInvalidErrorWithCause("normalization",
			fmt.Errorf("statistics length %d does not match row length %d", len(stats.Means), len(row)))
	}

	scaled := make([]float64, len(row))
	for col, value := range row {
		if forecast.IsBinaryFeature(col) || stats.Stds[col] == 0 {
			scaled[col] = value
			continue
		}
		scaled[col] = (value - stats.Means[col]) / stats.Stds[col]
	}
	return scaled, nil
}

// ApplyAll normalizes every row with the same fitted statistics.
func (n Normalizer) ApplyAll(stats mlmodel.Normalization, rows [][]float64) ([][]float64, error) {
	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		normalized, err := n.Apply(stats, row)
		if err != nil {
			return nil, err
		}
		scaled[i] = normalized
	}
	return scaled, nil
}
