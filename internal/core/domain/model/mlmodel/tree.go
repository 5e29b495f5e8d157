package mlmodel

import (
	"fmt"

	"forecast/internal/pkg/errs"
)

// NoChild marks an absent child index in a TreeNode. A node with both
// children absent is a leaf.
const NoChild = -1

// TreeNode is one node of a regression tree stored in flat-array form.
// Internal nodes split on features[FeatureIndex] <= Threshold; Left and
// Right are indexes into the owning Tree's node slice, or NoChild.
//
// A leaf's prediction lives in LeftValue; RightValue mirrors it so the
// serialized form stays symmetric. For internal nodes the two values hold
// the child-side residual means, which are informational only.
type TreeNode struct {
	FeatureIndex int     `json:"featureIndex"`
	Threshold    float64 `json:"threshold"`
	LeftValue    float64 `json:"leftValue"`
	RightValue   float64 `json:"rightValue"`
	Left         int     `json:"left"`
	Right        int     `json:"right"`
}

// IsLeaf reports whether the node has no children.
func (n TreeNode) IsLeaf() bool {
	return n.Left == NoChild && n.Right == NoChild
}

// Tree is a regression tree flattened into a node array with integer child
// indexes. Node 0 is the root. The flat form serializes directly and
// avoids pointer-linked recursive structures.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree for one feature vector and returns the leaf
// prediction. Leaves always answer with LeftValue.
func (t Tree) Predict(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}

	i := 0
	for {
		node := t.Nodes[i]
		if node.IsLeaf() {
			return node.LeftValue
		}

		if features[node.FeatureIndex] <= node.Threshold {
			if node.Left == NoChild {
				return node.LeftValue
			}
			i = node.Left
		} else {
			if node.Right == NoChild {
				return node.RightValue
			}
			i = node.Right
		}
	}
}

// Validate checks structural integrity: child indexes must point forward
// into the node slice, and the feature index of internal nodes must be
// non-negative.
func (t Tree) Validate() error {
	for i, node := range t.Nodes {
		for _, child := range []int{node.Left, node.Right} {
			if child == NoChild {
				continue
			}
			if child <= i || child >= len(t.Nodes) {
				return errs.NewValueIsInvalidErrorWithCause("tree",
					fmt.Errorf("node %d references invalid child %d", i, child))
			}
		}
		if !node.IsLeaf() && node.FeatureIndex < 0 {
			return errs.NewValueIsInvalidErrorWithCause("tree",
				fmt.Errorf("node %d has negative feature index", i))
		}
	}
	return nil
}
