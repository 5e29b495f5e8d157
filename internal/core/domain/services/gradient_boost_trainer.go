package services

import (
	"math/rand"
	"sort"

	"forecast/internal/core/domain/model/mlmodel"
)

// GradientBoostTrainer fits a gradient-boosted ensemble of shallow
// regression trees on the merged demand target. Each round fits one tree
// to the current residuals on a Bernoulli subsample, then shrinks the
// tree's corrections by the learning rate across all rows.
type GradientBoostTrainer struct {
	rng *rand.Rand
}

// NewGradientBoostTrainer creates a trainer with the given random source.
// A fixed seed makes training fully reproducible.
func NewGradientBoostTrainer(rng *rand.Rand) GradientBoostTrainer {
	return GradientBoostTrainer{rng: rng}
}

// Train fits the gradient-boost artifact on an already-normalized set.
func (t GradientBoostTrainer) Train(set TrainingSet, params mlmodel.ModelParameters) (mlmodel.GradientBoostWeights, error) {
	if err := set.Validate(); err != nil {
		return mlmodel.GradientBoostWeights{}, err
	}
	if err := params.Validate(); err != nil {
		return mlmodel.GradientBoostWeights{}, err
	}

	target := set.MergedTarget()

	initial := 0.0
	for _, y := range target {
		initial += y
	}
	initial /= float64(len(target))

	residuals := make([]float64, len(target))
	for i, y := range target {
		residuals[i] = y - initial
	}

	weights := mlmodel.GradientBoostWeights{
		Trees:             make([]mlmodel.Tree, 0, params.TreeCount()),
		LearningRate:      params.LearningRate(),
		InitialPrediction: initial,
	}

	for range params.TreeCount() {
		sample := t.subsample(len(target), params.SubsampleRatio())
		tree := t.buildTree(set.Features, residuals, sample, params)
		weights.Trees = append(weights.Trees, tree)

		for i, row := range set.Features {
			residuals[i] -= params.LearningRate() * tree.Predict(row)
		}
	}
	return weights, nil
}

// subsample draws each row independently with probability ratio. At least
// one row is always kept so a round never fits an empty tree.
func (t GradientBoostTrainer) subsample(size int, ratio float64) []int {
	sample := make([]int, 0, int(float64(size)*ratio)+1)
	for i := range size {
		if t.rng.Float64() < ratio {
			sample = append(sample, i)
		}
	}
	if len(sample) == 0 {
		sample = append(sample, t.rng.Intn(size))
	}
	return sample
}

// buildTree grows one regression tree breadth-first into flat-array form.
// Growth stops at maxDepth, when a node holds minSamplesLeaf rows or
// fewer, or when no split reduces variance; a split must also leave
// minSamplesLeaf rows on each side.
func (t GradientBoostTrainer) buildTree(
	features [][]float64,
	residuals []float64,
	sample []int,
	params mlmodel.ModelParameters,
) mlmodel.Tree {
	tree := mlmodel.Tree{}
	type pending struct {
		nodeIndex int
		rows      []int
		depth     int
	}

	tree.Nodes = append(tree.Nodes, t.leafNode(residuals, sample))
	queue := []pending{{nodeIndex: 0, rows: sample, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= params.MaxDepth() {
			continue
		}

		featureIndex, threshold, ok := t.bestSplit(features, residuals, current.rows, params.MinSamplesLeaf())
		if !ok {
			continue
		}

		var left, right []int
		for _, row := range current.rows {
			if features[row][featureIndex] <= threshold {
				left = append(left, row)
			} else {
				right = append(right, row)
			}
		}

		leftIndex := len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, t.leafNode(residuals, left))
		rightIndex := len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, t.leafNode(residuals, right))

		tree.Nodes[current.nodeIndex] = mlmodel.TreeNode{
			FeatureIndex: featureIndex,
			Threshold:    threshold,
			LeftValue:    mean(residuals, left),
			RightValue:   mean(residuals, right),
			Left:         leftIndex,
			Right:        rightIndex,
		}

		queue = append(queue,
			pending{nodeIndex: leftIndex, rows: left, depth: current.depth + 1},
			pending{nodeIndex: rightIndex, rows: right, depth: current.depth + 1},
		)
	}
	return tree
}

// leafNode builds a terminal node answering the mean residual of its rows.
func (t GradientBoostTrainer) leafNode(residuals []float64, rows []int) mlmodel.TreeNode {
	value := mean(residuals, rows)
	return mlmodel.TreeNode{
		FeatureIndex: -1,
		LeftValue:    value,
		RightValue:   value,
		Left:         mlmodel.NoChild,
		Right:        mlmodel.NoChild,
	}
}

// bestSplit scans every unique value of every feature as a candidate
// threshold (rows with value <= threshold go left) and picks the split
// with the largest variance reduction that leaves minSamplesLeaf rows on
// each side. Returns ok=false when no split improves on the parent.
func (t GradientBoostTrainer) bestSplit(
	features [][]float64,
	residuals []float64,
	rows []int,
	minSamplesLeaf int,
) (int, float64, bool) {
	if len(rows) <= minSamplesLeaf {
		return 0, 0, false
	}

	parentSSE := sumSquaredError(residuals, rows)
	bestGain := 0.0
	bestFeature, bestThreshold := 0, 0.0
	found := false

	for col := range features[rows[0]] {
		values := make([]float64, 0, len(rows))
		for _, row := range rows {
			values = append(values, features[row][col])
		}
		sort.Float64s(values)

		for i := range values {
			if i > 0 && values[i] == values[i-1] {
				continue
			}
			threshold := values[i]

			var left, right []int
			for _, row := range rows {
				if features[row][col] <= threshold {
					left = append(left, row)
				} else {
					right = append(right, row)
				}
			}
			if len(left) < minSamplesLeaf || len(right) < minSamplesLeaf {
				continue
			}

			gain := parentSSE - sumSquaredError(residuals, left) - sumSquaredError(residuals, right)
			if gain > bestGain {
				bestGain = gain
				bestFeature = col
				bestThreshold = threshold
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// PredictGradientBoost scores one normalized row with a gradient-boost
// artifact.
func PredictGradientBoost(weights mlmodel.GradientBoostWeights, row []float64) float64 {
	predicted := weights.InitialPrediction
	for _, tree := range weights.Trees {
		predicted += weights.LearningRate * tree.Predict(row)
	}
	return predicted
}

func mean(values []float64, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, row := range rows {
		sum += values[row]
	}
	return sum / float64(len(rows))
}

func sumSquaredError(values []float64, rows []int) float64 {
	m := mean(values, rows)
	sse := 0.0
	for _, row := range rows {
		diff := values[row] - m
		sse += diff * diff
	}
	return sse
}
