// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package model implements the binary classifiers behind the CHD risk
// predictor: logistic regression, k-nearest neighbors, a CART decision tree,
// a random forest and a linear SVM.
//
// All classifiers operate on pre-scaled feature matrices with labels 0/1.
// Training is deterministic for a fixed seed. Fitted models are immutable
// once persisted; serving only ever reads them.
package model

import (
	"encoding"
	"errors"
)

// Classifier is the contract every model family implements.
type Classifier interface {
	// Fit trains on X (n rows, fixed width) and labels y (0/1).
	Fit(X [][]float64, y []int) error

	// Predict returns the 0/1 class per row.
	Predict(X [][]float64) []int

	// Clone returns an unfitted copy with the same hyperparameters.
	// Cross-validation trains clones so fold fits never share state.
	Clone() Classifier

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// ProbabilityClassifier is implemented by families that expose calibrated
// class probabilities. The linear SVM deliberately does not: ranking metrics
// that need probabilities are reported unavailable for it rather than faked.
type ProbabilityClassifier interface {
	Classifier

	// PredictProba returns P(class=1) per row.
	PredictProba(X [][]float64) []float64
}

// Common training input errors.
var (
	ErrEmptyTrainingSet  = errors.New("model: empty training set")
	ErrLengthMismatch    = errors.New("model: X and y length mismatch")
	ErrSingleClass       = errors.New("model: training set has a single class")
	ErrInconsistentWidth = errors.New("model: inconsistent feature width")
)

// validateTrainingSet performs the shared Fit precondition checks.
func validateTrainingSet(X [][]float64, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return ErrLengthMismatch
	}
	width := len(X[0])
	for _, row := range X {
		if len(row) != width {
			return ErrInconsistentWidth
		}
	}
	seen := map[int]bool{}
	for _, label := range y {
		seen[label] = true
	}
	if len(seen) < 2 {
		return ErrSingleClass
	}
	return nil
}

// threshold converts probabilities to 0/1 labels at 0.5.
func threshold(proba []float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
