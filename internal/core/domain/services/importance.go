package services

import (
	"math"
	"sort"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/mlmodel"
)

// FeatureImportance is one feature's normalized share of a model's
// attention. Scores across a model sum to 1.
type FeatureImportance struct {
	Feature string
	Score   float64
}

// ComputeFeatureImportance ranks features by their contribution to the
// model's predictions, sorted descending by score. Linear models use
// absolute coefficient magnitude; gradient boosting uses split-usage
// frequency; ensembles blend the two by their ensemble weights.
func ComputeFeatureImportance(weights mlmodel.Weights) ([]FeatureImportance, error) {
	var raw map[string]float64

	switch weights.ModelType() {
	case mlmodel.Linear:
		linear, err := weights.Linear()
		if err != nil {
			return nil, err
		}
		raw = linearImportance(linear)
	case mlmodel.GradientBoost:
		gb, err := weights.GradientBoost()
		if err != nil {
			return nil, err
		}
		raw = gradientBoostImportance(gb)
	default:
		ensemble, err := weights.Ensemble()
		if err != nil {
			return nil, err
		}
		raw = make(map[string]float64, forecast.FeatureCount)
		for name, score := range linearImportance(ensemble.Linear) {
			raw[name] += ensemble.LinearWeight * score
		}
		for name, score := range gradientBoostImportance(ensemble.GradientBoost) {
			raw[name] += ensemble.GradientBoostWeight * score
		}
	}

	return normalizeImportance(raw), nil
}

func linearImportance(weights mlmodel.LinearWeights) map[string]float64 {
	scores := make(map[string]float64, len(weights.Coefficients))
	for name, coefficient := range weights.Coefficients {
		scores[name] = math.Abs(coefficient)
	}
	return scores
}

// gradientBoostImportance counts how often each feature is chosen as a
// split, averaged over the tree count.
func gradientBoostImportance(weights mlmodel.GradientBoostWeights) map[string]float64 {
	names := forecast.FeatureNames()
	scores := make(map[string]float64, len(names))
	if len(weights.Trees) == 0 {
		return scores
	}

	for _, tree := range weights.Trees {
		for _, node := range tree.Nodes {
			if node.IsLeaf() || node.FeatureIndex < 0 || node.FeatureIndex >= len(names) {
				continue
			}
			scores[names[node.FeatureIndex]]++
		}
	}
	for name := range scores {
		scores[name] /= float64(len(weights.Trees))
	}
	return scores
}

// normalizeImportance scales scores to sum to 1 and orders them by score
// descending, name ascending for ties, so the ranking is deterministic.
func normalizeImportance(raw map[string]float64) []FeatureImportance {
	total := 0.0
	for _, score := range raw {
		total += score
	}

	ranked := make([]FeatureImportance, 0, len(raw))
	for name, score := range raw {
		if total > 0 {
			score /= total
		}
		ranked = append(ranked, FeatureImportance{Feature: name, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	return ranked
}
