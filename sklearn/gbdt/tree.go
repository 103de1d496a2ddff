package gbdt

import "math"

// Node is one node of a regression tree. Leaves have Left and Right set
// to -1.
type Node struct {
	Feature     int     // split feature index
	Threshold   float64 // go left when value <= Threshold
	DefaultLeft bool    // direction for NaN
	Left        int
	Right       int
	Gain        float64

	Value float64 // leaf weight before shrinkage
	Cover float64 // hessian sum of the training rows reaching the node
}

// IsLeaf returns true if the node is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// Tree is a single tree of the ensemble stored as a flat node slice with
// the root at index 0.
type Tree struct {
	Nodes     []Node
	Shrinkage float64
}

// Predict returns the shrunken leaf value reached by row.
func (t *Tree) Predict(row []float64) float64 {
	idx := 0
	for idx >= 0 && idx < len(t.Nodes) {
		n := &t.Nodes[idx]
		if n.IsLeaf() {
			return n.Value * t.Shrinkage
		}
		v := row[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				idx = n.Left
			} else {
				idx = n.Right
			}
		case v <= n.Threshold:
			idx = n.Left
		default:
			idx = n.Right
		}
	}
	return 0
}

// NumLeaves counts the leaves of the tree.
func (t *Tree) NumLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			n++
		}
	}
	return n
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		n := &t.Nodes[idx]
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}
