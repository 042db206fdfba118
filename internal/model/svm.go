// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"bytes"
	"encoding/gob"
	"math/rand"
)

// LinearSVM is a margin-based binary classifier trained with stochastic
// sub-gradient descent on the hinge loss (primal form, L2 regularized by
// lambda = 1/(C*n)). It exposes no class probabilities: callers that need
// probability-based metrics must treat them as unavailable for this family.
type LinearSVM struct {
	// Hyperparameters
	C            float64
	Epochs       int
	LearningRate float64
	Seed         int64

	// Fitted parameters
	W []float64
	B float64
}

// NewLinearSVM returns a classifier with sensible defaults.
func NewLinearSVM() *LinearSVM {
	return &LinearSVM{
		C:            1,
		Epochs:       200,
		LearningRate: 0.01,
		Seed:         1,
	}
}

// Clone returns an unfitted copy with the same hyperparameters.
func (m *LinearSVM) Clone() Classifier {
	c := *m
	c.W = nil
	c.B = 0
	return &c
}

// Fit runs stochastic sub-gradient descent over shuffled samples. Labels are
// mapped to {-1, +1} internally.
func (m *LinearSVM) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	n := len(X)
	features := len(X[0])
	m.W = make([]float64, features)
	m.B = 0
	lambda := 1 / (m.C * float64(n))

	rng := rand.New(rand.NewSource(m.Seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < m.Epochs; epoch++ {
		rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })

		for _, i := range order {
			target := -1.0
			if y[i] == 1 {
				target = 1
			}

			margin := target * m.decision(X[i])
			for j := range m.W {
				grad := lambda * m.W[j]
				if margin < 1 {
					grad -= target * X[i][j]
				}
				m.W[j] -= m.LearningRate * grad
			}
			if margin < 1 {
				m.B += m.LearningRate * target
			}
		}
	}
	return nil
}

// Predict returns 0/1 labels by the sign of the decision function.
func (m *LinearSVM) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, row := range X {
		if m.decision(row) >= 0 {
			out[i] = 1
		}
	}
	return out
}

func (m *LinearSVM) decision(row []float64) float64 {
	sum := m.B
	for j, v := range row {
		sum += m.W[j] * v
	}
	return sum
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (m *LinearSVM) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	type payload LinearSVM
	if err := gob.NewEncoder(&buf).Encode((*payload)(m)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (m *LinearSVM) UnmarshalBinary(data []byte) error {
	type payload LinearSVM
	return gob.NewDecoder(bytes.NewReader(data)).Decode((*payload)(m))
}
