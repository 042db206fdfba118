// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package train

import (
	"context"
	"fmt"

	"github.com/cardiograph/cardiograph/internal/logging"
)

// Status of one family within a batch run.
const (
	StatusTrained = "trained"
	StatusFailed  = "failed"
)

// FamilyStatus records the per-model outcome of a batch run, reported to the
// operator as a status table.
type FamilyStatus struct {
	Family string
	Status string
	Err    error
}

// Trainer runs the grid search over the model catalog.
type Trainer struct {
	Search GridSearch
}

// NewTrainer builds a Trainer with the given cross-validation settings.
func NewTrainer(folds, workers int, seed int64) *Trainer {
	return &Trainer{Search: GridSearch{Folds: folds, Workers: workers, Seed: seed}}
}

// TrainModel searches and fits a single named family. Unknown families and
// degenerate training data yield a TrainingError.
func (t *Trainer) TrainModel(ctx context.Context, family string, X [][]float64, y []int) (*FittedModel, error) {
	spec, ok := specByFamily(family)
	if !ok {
		return nil, &TrainingError{Family: family, Err: fmt.Errorf("not in catalog")}
	}
	if len(X) == 0 {
		return nil, &TrainingError{Family: family, Err: fmt.Errorf("empty training data")}
	}
	if singleClass(y) {
		return nil, &TrainingError{Family: family, Err: fmt.Errorf("training data has a single class")}
	}

	logging.Info().
		Str("model", family).
		Int("candidates", len(enumerate(spec.Grid))).
		Int("folds", t.Search.Folds).
		Msg("Grid search started")

	fitted, err := t.Search.Run(ctx, spec, X, y)
	if err != nil {
		return nil, &TrainingError{Family: family, Err: err}
	}

	logging.Info().
		Str("model", family).
		Float64("cv_f1", fitted.CVScore).
		Interface("params", fitted.Params).
		Msg("Grid search complete")
	return fitted, nil
}

// TrainAll trains every catalog family with best-effort batch semantics: a
// failure in one family is recorded and the remaining families still train.
// The returned statuses carry one entry per family in catalog order.
func (t *Trainer) TrainAll(ctx context.Context, X [][]float64, y []int) ([]*FittedModel, []FamilyStatus) {
	var fitted []*FittedModel
	var statuses []FamilyStatus

	for _, spec := range Catalog() {
		if err := ctx.Err(); err != nil {
			statuses = append(statuses, FamilyStatus{Family: spec.Family, Status: StatusFailed, Err: err})
			continue
		}

		fm, err := t.TrainModel(ctx, spec.Family, X, y)
		if err != nil {
			logging.Error().Err(err).Str("model", spec.Family).Msg("Model training failed, continuing batch")
			statuses = append(statuses, FamilyStatus{Family: spec.Family, Status: StatusFailed, Err: err})
			continue
		}
		fitted = append(fitted, fm)
		statuses = append(statuses, FamilyStatus{Family: spec.Family, Status: StatusTrained})
	}
	return fitted, statuses
}

func singleClass(y []int) bool {
	if len(y) == 0 {
		return true
	}
	first := y[0]
	for _, v := range y[1:] {
		if v != first {
			return false
		}
	}
	return true
}
