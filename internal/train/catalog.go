// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package train runs the multi-model hyperparameter search: a fixed catalog
// of classifier families, each swept with a k-fold cross-validated exhaustive
// grid search scored by F1, with best-effort batch semantics across families.
package train

import (
	"fmt"

	"github.com/cardiograph/cardiograph/internal/model"
)

// Params is one hyperparameter configuration drawn from a grid.
type Params map[string]any

// ModelSpec is a catalog entry: a family tag, a constructor applying a
// configuration, and the hyperparameter grid to sweep.
type ModelSpec struct {
	Family string
	New    func(p Params, seed int64) (model.Classifier, error)
	Grid   map[string][]any
}

// TrainingError reports a failed search or fit for one model family. It is
// isolated: TrainAll records it and continues with the remaining families.
type TrainingError struct {
	Family string
	Err    error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training %s failed: %v", e.Family, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }

// Catalog returns the fixed model catalog. Iteration follows the returned
// slice order so runs are reproducible; no string-keyed reflection anywhere.
func Catalog() []ModelSpec {
	return []ModelSpec{
		{
			Family: model.FamilyLogReg,
			Grid: map[string][]any{
				"learning_rate": {0.01, 0.1},
				"l2":            {0.0001, 0.001, 0.01},
				"epochs":        {200},
			},
			New: func(p Params, seed int64) (model.Classifier, error) {
				m := model.NewLogisticRegression()
				m.LearningRate = floatParam(p, "learning_rate", m.LearningRate)
				m.L2 = floatParam(p, "l2", m.L2)
				m.Epochs = intParam(p, "epochs", m.Epochs)
				m.Seed = seed
				return m, nil
			},
		},
		{
			Family: model.FamilyKNN,
			Grid: map[string][]any{
				"k":       {3, 5, 7, 9},
				"weights": {model.WeightUniform, model.WeightDistance},
				"metric":  {model.MetricEuclidean, model.MetricManhattan},
			},
			New: func(p Params, _ int64) (model.Classifier, error) {
				m := model.NewKNN()
				m.K = intParam(p, "k", m.K)
				m.Weights = stringParam(p, "weights", m.Weights)
				m.Metric = stringParam(p, "metric", m.Metric)
				return m, nil
			},
		},
		{
			Family: model.FamilyTree,
			Grid: map[string][]any{
				"max_depth":         {3, 5, 7, 10},
				"min_samples_split": {2, 5, 10},
				"min_samples_leaf":  {1, 2, 4},
			},
			New: func(p Params, _ int64) (model.Classifier, error) {
				m := model.NewDecisionTree()
				m.MaxDepth = intParam(p, "max_depth", m.MaxDepth)
				m.MinSamplesSplit = intParam(p, "min_samples_split", m.MinSamplesSplit)
				m.MinSamplesLeaf = intParam(p, "min_samples_leaf", m.MinSamplesLeaf)
				return m, nil
			},
		},
		{
			Family: model.FamilyForest,
			Grid: map[string][]any{
				"n_estimators": {50, 100},
				// 0 means unlimited depth
				"max_depth":    {5, 10, 0},
				"max_features": {model.FeaturesSqrt, model.FeaturesLog2},
			},
			New: func(p Params, seed int64) (model.Classifier, error) {
				m := model.NewRandomForest()
				m.NEstimators = intParam(p, "n_estimators", m.NEstimators)
				m.MaxDepth = intParam(p, "max_depth", m.MaxDepth)
				m.MaxFeatures = stringParam(p, "max_features", m.MaxFeatures)
				m.Seed = seed
				return m, nil
			},
		},
		{
			Family: model.FamilySVM,
			Grid: map[string][]any{
				"c":      {0.1, 1.0, 10.0},
				"epochs": {200},
			},
			New: func(p Params, seed int64) (model.Classifier, error) {
				m := model.NewLinearSVM()
				m.C = floatParam(p, "c", m.C)
				m.Epochs = intParam(p, "epochs", m.Epochs)
				m.Seed = seed
				return m, nil
			},
		},
	}
}

// specByFamily finds a catalog entry by tag.
func specByFamily(family string) (ModelSpec, bool) {
	for _, spec := range Catalog() {
		if spec.Family == family {
			return spec, true
		}
	}
	return ModelSpec{}, false
}

// Parameter accessors tolerate the numeric widening that happens when grids
// mix untyped int and float literals.

func intParam(p Params, key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func floatParam(p Params, key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func stringParam(p Params, key string, fallback string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return fallback
}
