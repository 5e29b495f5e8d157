package mlmodel

import (
	"fmt"

	"forecast/internal/pkg/errs"
)

// ModelType identifies the trained model family. It determines which
// variant of the Weights union is populated and how the predictor scores
// a feature vector.
type ModelType int

const (
	// UnknownType represents an invalid or undefined model type.
	UnknownType ModelType = iota

	// Linear is L2-regularized linear regression fit with gradient descent.
	Linear

	// GradientBoost is an additive ensemble of shallow regression trees.
	GradientBoost

	// Ensemble blends Linear and GradientBoost, weighted inversely by
	// their in-sample MAPE.
	Ensemble
)

func getModelTypeStrings() map[ModelType]string {
	return map[ModelType]string{
		UnknownType:   "UNKNOWN",
		Linear:        "LINEAR",
		GradientBoost: "GRADIENT_BOOST",
		Ensemble:      "ENSEMBLE",
	}
}

func getValidModelTypeStrings() map[ModelType]string {
	//nolint:exhaustive // UnknownType is intentionally excluded as it's invalid
	return map[ModelType]string{
		Linear:        "LINEAR",
		GradientBoost: "GRADIENT_BOOST",
		Ensemble:      "ENSEMBLE",
	}
}

// ModelTypeFromString parses the persisted string form of a model type.
func ModelTypeFromString(s string) (ModelType, error) {
	for modelType, str := range getValidModelTypeStrings() {
		if str == s {
			return modelType, nil
		}
	}
	return UnknownType, errs.NewValueIsInvalidErrorWithCause("modelType",
		fmt.Errorf("%q is not a valid model type", s))
}

// Validate checks that the model type is one of the three trained families.
func (t ModelType) Validate() error {
	if _, ok := getValidModelTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("modelType",
			fmt.Errorf("%d is not a valid model type", t))
	}
	return nil
}

// String implements fmt.Stringer using the persisted representation.
func (t ModelType) String() string {
	if str, ok := getModelTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}
