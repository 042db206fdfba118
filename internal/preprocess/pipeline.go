// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"fmt"

	"github.com/cardiograph/cardiograph/internal/logging"
)

// Stage identifies a preprocessing pipeline stage, reported through the
// OnStage hook as the run's state machine advances.
type Stage string

const (
	StageLoaded   Stage = "LOADED"
	StageSplit    Stage = "SPLIT"
	StageBalanced Stage = "BALANCED"
	StageScaled   Stage = "SCALED"
)

// Pipeline composes the preprocessing steps in the leakage-safe order:
// load -> split -> impute (fit on train) -> balance (train only) ->
// scale (fit on train, applied to both).
//
// Split precedes balancing and the scaler fit so no statistic ever sees a
// test row. Imputation statistics likewise come from the training partition
// only; the loaded-then-imputed ordering of some reference pipelines leaks
// test information and is deliberately not reproduced here.
type Pipeline struct {
	TestRatio float64
	Seed      int64

	// OnStage, when set, observes each completed stage.
	OnStage func(Stage)
}

// Result is the preprocessed output of a pipeline run. The fitted Scaler and
// Imputer are part of the run's artifacts: serving must apply them verbatim.
type Result struct {
	XTrain [][]float64
	XTest  [][]float64
	YTrain []int
	YTest  []int

	Scaler  *StandardScaler
	Imputer *Imputer
}

// Run executes the full preprocessing pipeline against the given source.
func (p *Pipeline) Run(path string) (*Result, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, err
	}
	p.stage(StageLoaded)

	train, test, err := Split(ds, p.TestRatio, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	logging.Info().
		Int("train", train.Len()).
		Int("test", test.Len()).
		Msg("Dataset partitioned")
	p.stage(StageSplit)

	imputer := NewImputer()
	if err := imputer.Fit(train); err != nil {
		return nil, err
	}
	if err := imputer.Transform(train); err != nil {
		return nil, err
	}
	if err := imputer.Transform(test); err != nil {
		return nil, err
	}

	balanced, err := Balance(train, p.Seed)
	if err != nil {
		return nil, err
	}
	p.stage(StageBalanced)

	scaler := NewStandardScaler()
	if err := scaler.Fit(balanced.Features); err != nil {
		return nil, err
	}
	xTrain, err := scaler.Transform(balanced.Features)
	if err != nil {
		return nil, err
	}
	xTest, err := scaler.Transform(test.Features)
	if err != nil {
		return nil, err
	}
	p.stage(StageScaled)

	return &Result{
		XTrain:  xTrain,
		XTest:   xTest,
		YTrain:  balanced.Labels,
		YTest:   test.Labels,
		Scaler:  scaler,
		Imputer: imputer,
	}, nil
}

func (p *Pipeline) stage(s Stage) {
	if p.OnStage != nil {
		p.OnStage(s)
	}
}
