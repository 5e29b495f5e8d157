package mlmodel

import (
	"errors"
	"fmt"

	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

// Default hyperparameters used when a training request does not override
// them.
const (
	DefaultLearningRate   = 0.01
	DefaultIterations     = 1000
	DefaultL2Penalty      = 0.001
	DefaultTreeCount      = 50
	DefaultMaxDepth       = 3
	DefaultMinSamplesLeaf = 5
	DefaultSubsampleRatio = 0.8
)

// ErrModelParametersAreNotConstructed is returned when using improperly
// initialized ModelParameters.
var ErrModelParametersAreNotConstructed = errors.New(
	"ModelParameters must be created via NewModelParameters or DefaultModelParameters")

// ModelParameters is the immutable hyperparameter set for one training
// run. Linear training reads the learning rate, iteration count, and L2
// strength; gradient boosting reads the tree count, depth, leaf size, and
// subsample ratio; the ensemble reads all of them.
type ModelParameters struct { //nolint:recvcheck //using for validation
	learningRate   float64
	iterations     int
	l2Penalty      float64
	treeCount      int
	maxDepth       int
	minSamplesLeaf int
	subsampleRatio float64

	guard guard.ConstructorGuard
}

// NewModelParameters creates a validated hyperparameter set.
func NewModelParameters(
	learningRate float64,
	iterations int,
	l2Penalty float64,
	treeCount int,
	maxDepth int,
	minSamplesLeaf int,
	subsampleRatio float64,
) (ModelParameters, error) {
	params := ModelParameters{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		params.setLearningRate(learningRate),
		params.setIterations(iterations),
		params.setL2Penalty(l2Penalty),
		params.setTreeCount(treeCount),
		params.setMaxDepth(maxDepth),
		params.setMinSamplesLeaf(minSamplesLeaf),
		params.setSubsampleRatio(subsampleRatio),
	); err != nil {
		return ModelParameters{}, err
	}

	return params, nil
}

// DefaultModelParameters returns the standard hyperparameter set used by
// scheduled training.
func DefaultModelParameters() ModelParameters {
	params, _ := NewModelParameters(
		DefaultLearningRate,
		DefaultIterations,
		DefaultL2Penalty,
		DefaultTreeCount,
		DefaultMaxDepth,
		DefaultMinSamplesLeaf,
		DefaultSubsampleRatio,
	)
	return params
}

// LearningRate returns the gradient step size.
func (p ModelParameters) LearningRate() float64 { return p.learningRate }

// Iterations returns the fixed gradient-descent iteration count.
func (p ModelParameters) Iterations() int { return p.iterations }

// L2Penalty returns the ridge regularization strength.
func (p ModelParameters) L2Penalty() float64 { return p.l2Penalty }

// TreeCount returns the number of boosting rounds.
func (p ModelParameters) TreeCount() int { return p.treeCount }

// MaxDepth returns the maximum regression tree depth.
func (p ModelParameters) MaxDepth() int { return p.maxDepth }

// MinSamplesLeaf returns the minimum rows a node needs to keep splitting.
func (p ModelParameters) MinSamplesLeaf() int { return p.minSamplesLeaf }

// SubsampleRatio returns the per-row Bernoulli sampling rate per tree.
func (p ModelParameters) SubsampleRatio() float64 { return p.subsampleRatio }

// Validate ensures the parameters were created through a constructor.
func (p ModelParameters) Validate() error {
	return p.guard.Validate(ErrModelParametersAreNotConstructed)
}

func (p *ModelParameters) setLearningRate(rate float64) error {
	if rate <= 0 || rate > 1 {
		return errs.NewValueIsOutOfRangeError("learningRate", rate, 0.0, 1.0)
	}
	p.learningRate = rate
	return nil
}

func (p *ModelParameters) setIterations(iterations int) error {
	if iterations <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("iterations",
			fmt.Errorf("%d is not greater than 0", iterations))
	}
	p.iterations = iterations
	return nil
}

func (p *ModelParameters) setL2Penalty(penalty float64) error {
	if penalty < 0 {
		return errs.NewValueIsInvalidErrorWithCause("l2Penalty",
			fmt.Errorf("%f must not be negative", penalty))
	}
	p.l2Penalty = penalty
	return nil
}

func (p *ModelParameters) setTreeCount(count int) error {
	if count <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("treeCount",
			fmt.Errorf("%d is not greater than 0", count))
	}
	p.treeCount = count
	return nil
}

func (p *ModelParameters) setMaxDepth(depth int) error {
	if depth <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("maxDepth",
			fmt.Errorf("%d is not greater than 0", depth))
	}
	p.maxDepth = depth
	return nil
}

func (p *ModelParameters) setMinSamplesLeaf(minLeaf int) error {
	if minLeaf <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("minSamplesLeaf",
			fmt.Errorf("%d is not greater than 0", minLeaf))
	}
	p.minSamplesLeaf = minLeaf
	return nil
}

func (p *ModelParameters) setSubsampleRatio(ratio float64) error {
	if ratio <= 0 || ratio > 1 {
		return errs.NewValueIsOutOfRangeError("subsampleRatio", ratio, 0.0, 1.0)
	}
	p.subsampleRatio = ratio
	return nil
}
