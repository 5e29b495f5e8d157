package services_test

import (
	"math/rand"
	"testing"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepSet builds a training set with a clean step function: demand is 0
// below the temperature threshold and 10 above it.
func stepSet(t *testing.T) services.TrainingSet {
	t.Helper()

	set := services.TrainingSet{}
	for i := 1; i <= 10; i++ {
		set.Features = append(set.Features, rowWith(t, map[string]float64{forecast.FeatureTemperature: float64(i)}))
		target := 0.0
		if i > 5 {
			target = 10
		}
		set.DineIn = append(set.DineIn, target)
		set.Delivery = append(set.Delivery, target)
	}
	return set
}

func gbParams(t *testing.T) mlmodel.ModelParameters {
	t.Helper()
	// Full subsampling keeps the synthetic fit deterministic regardless of
	// the random source.
	params, err := mlmodel.NewModelParameters(0.3, 100, 0, 30, 2, 2, 1.0)
	require.NoError(t, err)
	return params
}

func TestGradientBoostTrainer_Train_LearnsStepFunction(t *testing.T) {
	// Arrange
	trainer := services.NewGradientBoostTrainer(rand.New(rand.NewSource(1)))
	set := stepSet(t)

	// Act
	weights, err := trainer.Train(set, gbParams(t))
	require.NoError(t, err)

	// Assert
	assert.Len(t, weights.Trees, 30)
	assert.InDelta(t, 5, weights.InitialPrediction, 1e-9)

	for i, row := range set.Features {
		predicted := services.PredictGradientBoost(weights, row)
		assert.InDelta(t, set.DineIn[i], predicted, 1.0, "row %d", i)
	}
}

func TestGradientBoostTrainer_Train_FirstTreeSplitsAtThreshold(t *testing.T) {
	// Arrange
	trainer := services.NewGradientBoostTrainer(rand.New(rand.NewSource(1)))
	set := stepSet(t)

	// Act
	weights, err := trainer.Train(set, gbParams(t))
	require.NoError(t, err)

	// Assert: thresholds are the observed feature values themselves, so
	// the best variance-reduction split of the step data lands exactly on
	// 5 (rows with temperature <= 5 go left). The first tree fits
	// residuals against the initial prediction of 5, hence the -5/+5
	// leaf values.
	root := weights.Trees[0].Nodes[0]
	temperatureIndex, _ := forecast.FeatureIndex(forecast.FeatureTemperature)
	require.False(t, root.IsLeaf())
	assert.Equal(t, temperatureIndex, root.FeatureIndex)
	assert.InDelta(t, 5.0, root.Threshold, 1e-9)
	assert.InDelta(t, -5.0, root.LeftValue, 1e-9)
	assert.InDelta(t, 5.0, root.RightValue, 1e-9)
}

func TestGradientBoostTrainer_Train_LeafFloorStopsGrowth(t *testing.T) {
	// Arrange: six rows cannot be split with five rows required on each
	// side, so every tree stays a single leaf.
	trainer := services.NewGradientBoostTrainer(rand.New(rand.NewSource(1)))
	set := services.TrainingSet{}
	for i := 1; i <= 6; i++ {
		set.Features = append(set.Features, rowWith(t, map[string]float64{forecast.FeatureTemperature: float64(i)}))
		target := 0.0
		if i > 3 {
			target = 10
		}
		set.DineIn = append(set.DineIn, target)
		set.Delivery = append(set.Delivery, target)
	}
	params, err := mlmodel.NewModelParameters(0.3, 100, 0, 5, 3, 5, 1.0)
	require.NoError(t, err)

	// Act
	weights, err := trainer.Train(set, params)
	require.NoError(t, err)

	// Assert
	for i, tree := range weights.Trees {
		require.Len(t, tree.Nodes, 1, "tree %d", i)
		assert.True(t, tree.Nodes[0].IsLeaf(), "tree %d", i)
	}
}

func TestGradientBoostTrainer_Train_IsReproducibleWithSameSeed(t *testing.T) {
	set := stepSet(t)
	params, err := mlmodel.NewModelParameters(0.3, 100, 0, 10, 2, 2, 0.7)
	require.NoError(t, err)

	first, err := services.NewGradientBoostTrainer(rand.New(rand.NewSource(7))).Train(set, params)
	require.NoError(t, err)
	second, err := services.NewGradientBoostTrainer(rand.New(rand.NewSource(7))).Train(set, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGradientBoostTrainer_Train_TreesValidateStructurally(t *testing.T) {
	trainer := services.NewGradientBoostTrainer(rand.New(rand.NewSource(1)))

	weights, err := trainer.Train(stepSet(t), gbParams(t))
	require.NoError(t, err)

	for i, tree := range weights.Trees {
		require.NoError(t, tree.Validate(), "tree %d", i)
	}
}

func TestGradientBoostTrainer_Train_ConstantTargetStaysAtInitial(t *testing.T) {
	// Arrange: no variance means no split should ever be found.
	trainer := services.NewGradientBoostTrainer(rand.New(rand.NewSource(1)))
	set := services.TrainingSet{}
	for range 8 {
		set.Features = append(set.Features, make([]float64, forecast.FeatureCount))
		set.DineIn = append(set.DineIn, 12)
		set.Delivery = append(set.Delivery, 12)
	}

	// Act
	weights, err := trainer.Train(set, gbParams(t))
	require.NoError(t, err)

	// Assert
	assert.InDelta(t, 12, weights.InitialPrediction, 1e-9)
	predicted := services.PredictGradientBoost(weights, set.Features[0])
	assert.InDelta(t, 12, predicted, 1e-9)
}
