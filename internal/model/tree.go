// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"bytes"
	"encoding/gob"
	"math"
	"sort"
)

// Split criteria supported by the decision tree.
const (
	CriterionGini    = "gini"
	CriterionEntropy = "entropy"
)

// DecisionTree is a CART-style binary classifier with numeric threshold
// splits. Inputs are imputed before training, so the tree does not need
// missing-value routing.
type DecisionTree struct {
	MaxDepth        int // 0 means no depth limit
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string

	Root *TreeNode
}

// TreeNode is a node of the fitted tree. Exported fields keep the gob
// payload self-describing.
type TreeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64 // rows with value <= Threshold go left
	Left      *TreeNode
	Right     *TreeNode

	// Leaf data
	Samples  int
	Positive float64 // fraction of class-1 samples at this leaf
}

// NewDecisionTree returns a classifier with sensible defaults.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       CriterionGini,
	}
}

// Clone returns an unfitted copy with the same hyperparameters.
func (t *DecisionTree) Clone() Classifier {
	return &DecisionTree{
		MaxDepth:        t.MaxDepth,
		MinSamplesSplit: t.MinSamplesSplit,
		MinSamplesLeaf:  t.MinSamplesLeaf,
		Criterion:       t.Criterion,
	}
}

// Fit grows the tree by recursive impurity-minimizing splits.
func (t *DecisionTree) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.Root = t.grow(X, y, idx, 0, nil)
	return nil
}

// fitSubset grows the tree on the given row indices. The random forest uses
// this for bootstrap samples without copying the matrix.
func (t *DecisionTree) fitSubset(X [][]float64, y []int, idx []int, featureSampler func(int) []int) {
	t.Root = t.grow(X, y, idx, 0, featureSampler)
}

// grow builds one node. featureSampler, when non-nil, restricts the features
// considered at this node (random forest subspace sampling).
func (t *DecisionTree) grow(X [][]float64, y []int, idx []int, depth int, featureSampler func(int) []int) *TreeNode {
	n := len(idx)
	positive := 0
	for _, i := range idx {
		positive += y[i]
	}

	node := &TreeNode{Samples: n, Positive: float64(positive) / float64(n)}
	pure := positive == 0 || positive == n
	if pure || n < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.Leaf = true
		return node
	}

	width := len(X[0])
	features := make([]int, width)
	for j := range features {
		features[j] = j
	}
	if featureSampler != nil {
		features = featureSampler(width)
	}

	parent := t.impurity(positive, n)
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	for _, f := range features {
		gain, thr, ok := t.bestSplit(X, y, idx, f, parent)
		if ok && gain > bestGain {
			bestGain, bestFeature, bestThreshold = gain, f, thr
		}
	}

	if bestFeature < 0 {
		node.Leaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = bestFeature
	node.Threshold = bestThreshold
	node.Left = t.grow(X, y, left, depth+1, featureSampler)
	node.Right = t.grow(X, y, right, depth+1, featureSampler)
	return node
}

// bestSplit scans sorted candidate thresholds for one feature, tracking class
// counts incrementally so each candidate costs O(1).
func (t *DecisionTree) bestSplit(X [][]float64, y []int, idx []int, feature int, parent float64) (gain, thr float64, ok bool) {
	type cell struct {
		v     float64
		label int
	}
	cells := make([]cell, len(idx))
	totalPos := 0
	for k, i := range idx {
		cells[k] = cell{X[i][feature], y[i]}
		totalPos += y[i]
	}
	sort.Slice(cells, func(a, b int) bool { return cells[a].v < cells[b].v })

	n := len(cells)
	leftPos := 0
	for s := 1; s < n; s++ {
		leftPos += cells[s-1].label
		if cells[s].v == cells[s-1].v {
			continue
		}
		if s < t.MinSamplesLeaf || n-s < t.MinSamplesLeaf {
			continue
		}

		impL := t.impurity(leftPos, s)
		impR := t.impurity(totalPos-leftPos, n-s)
		weighted := (float64(s)*impL + float64(n-s)*impR) / float64(n)
		if g := parent - weighted; g > gain {
			gain = g
			thr = (cells[s-1].v + cells[s].v) / 2
			ok = true
		}
	}
	return gain, thr, ok
}

// impurity computes gini or entropy for a binary count.
func (t *DecisionTree) impurity(positive, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(positive) / float64(n)
	if t.Criterion == CriterionEntropy {
		e := 0.0
		if p > 0 {
			e -= p * math.Log2(p)
		}
		if p < 1 {
			e -= (1 - p) * math.Log2(1-p)
		}
		return e
	}
	return 2 * p * (1 - p)
}

// PredictProba returns the positive-class fraction of the leaf each row
// lands in.
func (t *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = t.probaSingle(row)
	}
	return out
}

// Predict returns 0/1 labels at the 0.5 leaf-fraction threshold.
func (t *DecisionTree) Predict(X [][]float64) []int {
	return threshold(t.PredictProba(X))
}

func (t *DecisionTree) probaSingle(row []float64) float64 {
	node := t.Root
	if node == nil {
		return 0.5
	}
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Positive
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (t *DecisionTree) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	type payload DecisionTree
	if err := gob.NewEncoder(&buf).Encode((*payload)(t)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (t *DecisionTree) UnmarshalBinary(data []byte) error {
	type payload DecisionTree
	return gob.NewDecoder(bytes.NewReader(data)).Decode((*payload)(t))
}
