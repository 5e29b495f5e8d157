package mlmodel

import (
	"encoding/json"
	"fmt"
	"math"

	"forecast/internal/pkg/errs"
)

// TrainingMetrics summarizes in-sample accuracy of a training run.
// MAPE is expressed in percent and computed only over rows with a
// positive actual value.
type TrainingMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2Score"`
}

// Normalization holds the per-feature z-score statistics fitted on the
// training matrix. Binary features carry zeros and are skipped when the
// statistics are applied; a zero standard deviation means "no scaling".
type Normalization struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// LinearWeights is the persisted artifact of linear training: a single
// shared intercept and coefficient vector keyed by canonical feature name.
// It is the arithmetic mean of the per-target (dine-in, delivery) fits.
type LinearWeights struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// GradientBoostWeights is the persisted artifact of gradient boosting:
// the base prediction plus learning-rate-scaled tree corrections.
type GradientBoostWeights struct {
	Trees             []Tree  `json:"trees"`
	LearningRate      float64 `json:"learningRate"`
	InitialPrediction float64 `json:"initialPrediction"`
}

// EnsembleWeights blends the two base artifacts. LinearWeight and
// GradientBoostWeight always sum to 1.
type EnsembleWeights struct {
	Linear              LinearWeights        `json:"linear"`
	GradientBoost       GradientBoostWeights `json:"gradientBoost"`
	LinearWeight        float64              `json:"linearWeight"`
	GradientBoostWeight float64              `json:"gradientBoostWeight"`
}

// Weights is the tagged union of algorithm-specific parameters, keyed by
// ModelType. Exactly the variant matching the tag is populated; the
// predictor and feature-importance logic switch on the tag.
type Weights struct {
	modelType     ModelType
	linear        *LinearWeights
	gradientBoost *GradientBoostWeights
	ensemble      *EnsembleWeights
}

// NewLinearWeights wraps a linear artifact in the union.
func NewLinearWeights(linear LinearWeights) Weights {
	return Weights{modelType: Linear, linear: &linear}
}

// NewGradientBoostWeights wraps a gradient-boost artifact in the union.
func NewGradientBoostWeights(gb GradientBoostWeights) Weights {
	return Weights{modelType: GradientBoost, gradientBoost: &gb}
}

// NewEnsembleWeights wraps an ensemble artifact in the union.
func NewEnsembleWeights(ensemble EnsembleWeights) Weights {
	return Weights{modelType: Ensemble, ensemble: &ensemble}
}

// ModelType returns the union tag.
func (w Weights) ModelType() ModelType {
	return w.modelType
}

// Linear returns the linear variant, or an error if the tag differs.
func (w Weights) Linear() (LinearWeights, error) {
	if w.modelType != Linear || w.linear == nil {
		return LinearWeights{}, errs.NewValueIsInvalidErrorWithCause("weights",
			fmt.Errorf("weights hold %s, not LINEAR", w.modelType))
	}
	return *w.linear, nil
}

// GradientBoost returns the gradient-boost variant, or an error if the
// tag differs.
func (w Weights) GradientBoost() (GradientBoostWeights, error) {
	if w.modelType != GradientBoost || w.gradientBoost == nil {
		return GradientBoostWeights{}, errs.NewValueIsInvalidErrorWithCause("weights",
			fmt.Errorf("weights hold %s, not GRADIENT_BOOST", w.modelType))
	}
	return *w.gradientBoost, nil
}

// Ensemble returns the ensemble variant, or an error if the tag differs.
func (w Weights) Ensemble() (EnsembleWeights, error) {
	if w.modelType != Ensemble || w.ensemble == nil {
		return EnsembleWeights{}, errs.NewValueIsInvalidErrorWithCause("weights",
			fmt.Errorf("weights hold %s, not ENSEMBLE", w.modelType))
	}
	return *w.ensemble, nil
}

// Validate checks the tag, that exactly the matching variant is set, and
// variant-specific invariants (tree integrity, ensemble weights summing
// to 1).
func (w Weights) Validate() error {
	if err := w.modelType.Validate(); err != nil {
		return err
	}

	switch w.modelType {
	case Linear:
		if w.linear == nil || w.gradientBoost != nil || w.ensemble != nil {
			return errs.NewValueIsInvalidError("weights variant does not match LINEAR tag")
		}
	case GradientBoost:
		if w.gradientBoost == nil || w.linear != nil || w.ensemble != nil {
			return errs.NewValueIsInvalidError("weights variant does not match GRADIENT_BOOST tag")
		}
		return w.validateTrees(w.gradientBoost.Trees)
	case Ensemble:
		if w.ensemble == nil || w.linear != nil || w.gradientBoost != nil {
			return errs.NewValueIsInvalidError("weights variant does not match ENSEMBLE tag")
		}
		sum := w.ensemble.LinearWeight + w.ensemble.GradientBoostWeight
		if math.Abs(sum-1) > 1e-9 {
			return errs.NewValueIsInvalidErrorWithCause("weights",
				fmt.Errorf("ensemble weights sum to %f, expected 1", sum))
		}
		return w.validateTrees(w.ensemble.GradientBoost.Trees)
	case UnknownType:
	}
	return nil
}

func (w Weights) validateTrees(trees []Tree) error {
	for _, tree := range trees {
		if err := tree.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// weightsDoc is the serialized form of the union.
type weightsDoc struct {
	ModelType     string                `json:"modelType"`
	Linear        *LinearWeights        `json:"linear,omitempty"`
	GradientBoost *GradientBoostWeights `json:"gradientBoost,omitempty"`
	Ensemble      *EnsembleWeights      `json:"ensemble,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (w Weights) MarshalJSON() ([]byte, error) {
	return json.Marshal(weightsDoc{
		ModelType:     w.modelType.String(),
		Linear:        w.linear,
		GradientBoost: w.gradientBoost,
		Ensemble:      w.ensemble,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Weights) UnmarshalJSON(data []byte) error {
	var doc weightsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	modelType, err := ModelTypeFromString(doc.ModelType)
	if err != nil {
		return err
	}

	w.modelType = modelType
	w.linear = doc.Linear
	w.gradientBoost = doc.GradientBoost
	w.ensemble = doc.Ensemble
	return w.Validate()
}
