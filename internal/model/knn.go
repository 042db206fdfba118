// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
)

// Distance metrics supported by KNN.
const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
)

// Neighbor weighting schemes supported by KNN.
const (
	WeightUniform  = "uniform"
	WeightDistance = "distance"
)

// KNN is a lazy k-nearest-neighbors classifier: Fit stores the training set
// and Predict votes among the k closest rows.
type KNN struct {
	K       int
	Weights string
	Metric  string

	// Stored training data
	X []float64 // flattened row-major to keep the gob payload compact
	Y []int
	W int // feature width
}

// NewKNN returns a classifier with sensible defaults.
func NewKNN() *KNN {
	return &KNN{K: 5, Weights: WeightUniform, Metric: MetricEuclidean}
}

// Clone returns an unfitted copy with the same hyperparameters.
func (m *KNN) Clone() Classifier {
	return &KNN{K: m.K, Weights: m.Weights, Metric: m.Metric}
}

// Fit stores the training data.
func (m *KNN) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}
	if m.K <= 0 {
		return fmt.Errorf("model: knn k must be positive, got %d", m.K)
	}
	switch m.Metric {
	case MetricEuclidean, MetricManhattan:
	default:
		return fmt.Errorf("model: unsupported knn metric %q", m.Metric)
	}
	switch m.Weights {
	case WeightUniform, WeightDistance:
	default:
		return fmt.Errorf("model: unsupported knn weighting %q", m.Weights)
	}

	m.W = len(X[0])
	m.X = make([]float64, 0, len(X)*m.W)
	for _, row := range X {
		m.X = append(m.X, row...)
	}
	m.Y = append([]int(nil), y...)
	return nil
}

// PredictProba returns the weighted positive-vote fraction among the k
// nearest neighbors, scored in parallel worker chunks.
func (m *KNN) PredictProba(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	out := make([]float64, len(X))

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(X) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(X) {
			end = len(X)
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = m.probaSingle(X[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// Predict returns 0/1 labels by majority (or distance-weighted) vote.
func (m *KNN) Predict(X [][]float64) []int {
	return threshold(m.PredictProba(X))
}

// probaSingle scores one row. A small sorted neighbor buffer is maintained
// instead of sorting all training distances.
func (m *KNN) probaSingle(row []float64) float64 {
	type neighbor struct {
		dist  float64
		label int
	}

	n := len(m.Y)
	k := m.K
	if k > n {
		k = n
	}

	nbrs := make([]neighbor, 0, k+1)
	for i := 0; i < n; i++ {
		d := m.distance(row, m.X[i*m.W:(i+1)*m.W])
		if len(nbrs) < k {
			nbrs = append(nbrs, neighbor{d, m.Y[i]})
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		} else if d < nbrs[k-1].dist {
			nbrs[k-1] = neighbor{d, m.Y[i]}
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		}
	}

	var positive, total float64
	for _, nb := range nbrs {
		w := 1.0
		if m.Weights == WeightDistance {
			// An exact match dominates the vote.
			if nb.dist == 0 {
				w = 1e12
			} else {
				w = 1 / nb.dist
			}
		}
		total += w
		if nb.label == 1 {
			positive += w
		}
	}
	if total == 0 {
		return 0
	}
	return positive / total
}

func (m *KNN) distance(a, b []float64) float64 {
	sum := 0.0
	if m.Metric == MetricManhattan {
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	}
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	// Squared distance would suffice for ranking but distance weighting
	// needs the true metric.
	return math.Sqrt(sum)
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (m *KNN) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	type payload KNN
	if err := gob.NewEncoder(&buf).Encode((*payload)(m)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (m *KNN) UnmarshalBinary(data []byte) error {
	type payload KNN
	return gob.NewDecoder(bytes.NewReader(data)).Decode((*payload)(m))
}
