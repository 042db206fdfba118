// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"sync"
)

// Feature subsampling strategies for the random forest.
const (
	FeaturesAll  = "all"
	FeaturesSqrt = "sqrt"
	FeaturesLog2 = "log2"
)

// RandomForest is a bagging ensemble of decision trees. Each tree trains on
// a bootstrap sample with per-node feature subsampling; prediction averages
// the trees' leaf fractions.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     string
	Seed            int64

	Trees []*DecisionTree
}

// NewRandomForest returns a classifier with sensible defaults.
func NewRandomForest() *RandomForest {
	return &RandomForest{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     FeaturesSqrt,
		Seed:            1,
	}
}

// Clone returns an unfitted copy with the same hyperparameters.
func (rf *RandomForest) Clone() Classifier {
	c := *rf
	c.Trees = nil
	return &c
}

// Fit trains the trees concurrently. Each tree derives its own seed from the
// forest seed, so training is deterministic regardless of goroutine order.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	n := len(X)
	rf.Trees = make([]*DecisionTree, rf.NEstimators)

	var wg sync.WaitGroup
	for t := 0; t < rf.NEstimators; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(rf.Seed + int64(t)))

			// Bootstrap sample of row indices.
			idx := make([]int, n)
			for i := range idx {
				idx[i] = rng.Intn(n)
			}

			tree := &DecisionTree{
				MaxDepth:        rf.MaxDepth,
				MinSamplesSplit: rf.MinSamplesSplit,
				MinSamplesLeaf:  rf.MinSamplesLeaf,
				Criterion:       CriterionGini,
			}
			tree.fitSubset(X, y, idx, rf.featureSampler(rng))
			rf.Trees[t] = tree
		}(t)
	}
	wg.Wait()
	return nil
}

// featureSampler returns the per-node feature subset function for one tree.
func (rf *RandomForest) featureSampler(rng *rand.Rand) func(int) []int {
	return func(width int) []int {
		take := width
		switch rf.MaxFeatures {
		case FeaturesSqrt:
			take = int(math.Sqrt(float64(width)))
		case FeaturesLog2:
			take = int(math.Log2(float64(width)))
		}
		if take < 1 {
			take = 1
		}
		if take >= width {
			take = width
		}

		features := make([]int, width)
		for j := range features {
			features[j] = j
		}
		rng.Shuffle(width, func(a, b int) { features[a], features[b] = features[b], features[a] })
		return features[:take]
	}
}

// PredictProba averages the per-tree leaf fractions.
func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(rf.Trees) == 0 {
		return out
	}
	for _, tree := range rf.Trees {
		for i, p := range tree.PredictProba(X) {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.Trees))
	}
	return out
}

// Predict returns 0/1 labels by averaged vote.
func (rf *RandomForest) Predict(X [][]float64) []int {
	return threshold(rf.PredictProba(X))
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (rf *RandomForest) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	type payload RandomForest
	if err := gob.NewEncoder(&buf).Encode((*payload)(rf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (rf *RandomForest) UnmarshalBinary(data []byte) error {
	type payload RandomForest
	return gob.NewDecoder(bytes.NewReader(data)).Decode((*payload)(rf))
}
