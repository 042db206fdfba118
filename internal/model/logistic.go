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
	"runtime"
	"sync"
)

// LogisticRegression is a binary classifier trained with mini-batch gradient
// descent on the cross-entropy loss with L2 regularization.
type LogisticRegression struct {
	// Hyperparameters
	LearningRate float64
	Epochs       int
	BatchSize    int
	L2           float64
	Seed         int64

	// Fitted parameters
	W []float64
	B float64
}

// NewLogisticRegression returns a classifier with sensible defaults.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		Epochs:       200,
		BatchSize:    64,
		L2:           0.001,
		Seed:         1,
	}
}

// Clone returns an unfitted copy with the same hyperparameters.
func (m *LogisticRegression) Clone() Classifier {
	c := *m
	c.W = nil
	c.B = 0
	return &c
}

// Fit trains the weights with mini-batch gradient descent. A fixed seed
// shuffles batches identically on every run.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	n := len(X)
	features := len(X[0])
	m.W = make([]float64, features)
	m.B = 0

	batch := m.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}

	rng := rand.New(rand.NewSource(m.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < m.Epochs; epoch++ {
		rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })

		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}

			gW := make([]float64, features)
			gB := 0.0
			for _, i := range order[start:end] {
				p := sigmoid(m.decision(X[i]))
				d := p - float64(y[i])
				for j, v := range X[i] {
					gW[j] += d * v
				}
				gB += d
			}

			scale := m.LearningRate / float64(end-start)
			for j := range m.W {
				m.W[j] -= scale*gW[j] + m.LearningRate*m.L2*m.W[j]
			}
			m.B -= scale * gB
		}
	}
	return nil
}

// PredictProba returns P(class=1) per row. Rows are scored in parallel
// worker chunks since inference is embarrassingly parallel.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
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
				out[i] = sigmoid(m.decision(X[i]))
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// Predict returns 0/1 labels at the 0.5 probability threshold.
func (m *LogisticRegression) Predict(X [][]float64) []int {
	return threshold(m.PredictProba(X))
}

func (m *LogisticRegression) decision(row []float64) float64 {
	sum := m.B
	for j, v := range row {
		sum += m.W[j] * v
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (m *LogisticRegression) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	type payload LogisticRegression
	if err := gob.NewEncoder(&buf).Encode((*payload)(m)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (m *LogisticRegression) UnmarshalBinary(data []byte) error {
	type payload LogisticRegression
	return gob.NewDecoder(bytes.NewReader(data)).Decode((*payload)(m))
}
