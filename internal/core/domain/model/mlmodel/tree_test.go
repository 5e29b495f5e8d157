package mlmodel_test

import (
	"testing"

	"forecast/internal/core/domain/model/mlmodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// depthTwoTree splits on feature 0 at the root and on feature 1 on the
// left side, answering 1, 2 or 3.
func depthTwoTree() mlmodel.Tree {
	return mlmodel.Tree{Nodes: []mlmodel.TreeNode{
		{FeatureIndex: 0, Threshold: 5, Left: 1, Right: 2},
		{FeatureIndex: 1, Threshold: 0.5, Left: 3, Right: 4},
		{FeatureIndex: -1, LeftValue: 3, RightValue: 3, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
		{FeatureIndex: -1, LeftValue: 1, RightValue: 1, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
		{FeatureIndex: -1, LeftValue: 2, RightValue: 2, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
	}}
}

func TestTree_Predict_WalksToTheMatchingLeaf(t *testing.T) {
	tree := depthTwoTree()

	tests := []struct {
		name     string
		features []float64
		want     float64
	}{
		{name: "left then left", features: []float64{3, 0}, want: 1},
		{name: "left then right", features: []float64{3, 1}, want: 2},
		{name: "right side", features: []float64{8, 0}, want: 3},
		{name: "threshold goes left", features: []float64{5, 0}, want: 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, tree.Predict(test.features))
		})
	}
}

func TestTree_Predict_EmptyTreeAnswersZero(t *testing.T) {
	assert.Zero(t, mlmodel.Tree{}.Predict([]float64{1, 2, 3}))
}

func TestTree_Predict_SingleLeafAnswersItsValue(t *testing.T) {
	tree := mlmodel.Tree{Nodes: []mlmodel.TreeNode{
		{FeatureIndex: -1, LeftValue: 7, RightValue: 7, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
	}}

	assert.Equal(t, 7.0, tree.Predict([]float64{42}))
}

func TestTree_Validate_AcceptsWellFormedTree(t *testing.T) {
	require.NoError(t, depthTwoTree().Validate())
	require.NoError(t, mlmodel.Tree{}.Validate())
}

func TestTree_Validate_RejectsBackwardChildReference(t *testing.T) {
	// A child index pointing at itself or an earlier node would loop.
	tree := mlmodel.Tree{Nodes: []mlmodel.TreeNode{
		{FeatureIndex: 0, Threshold: 1, Left: 1, Right: 2},
		{FeatureIndex: 0, Threshold: 1, Left: 0, Right: mlmodel.NoChild},
		{FeatureIndex: -1, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
	}}

	require.Error(t, tree.Validate())
}

func TestTree_Validate_RejectsChildBeyondNodeSlice(t *testing.T) {
	tree := mlmodel.Tree{Nodes: []mlmodel.TreeNode{
		{FeatureIndex: 0, Threshold: 1, Left: 1, Right: 5},
		{FeatureIndex: -1, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
	}}

	require.Error(t, tree.Validate())
}

func TestTree_Validate_RejectsInternalNodeWithNegativeFeature(t *testing.T) {
	tree := mlmodel.Tree{Nodes: []mlmodel.TreeNode{
		{FeatureIndex: -1, Threshold: 1, Left: 1, Right: 2},
		{FeatureIndex: -1, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
		{FeatureIndex: -1, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
	}}

	require.Error(t, tree.Validate())
}

func TestTreeNode_IsLeaf(t *testing.T) {
	leaf := mlmodel.TreeNode{Left: mlmodel.NoChild, Right: mlmodel.NoChild}
	internal := mlmodel.TreeNode{Left: 1, Right: 2}

	assert.True(t, leaf.IsLeaf())
	assert.False(t, internal.IsLeaf())
}
