// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package pipeline orchestrates a full offline training run: preprocessing,
// the multi-model grid search, evaluation, ranking and report persistence,
// driven through an explicit run state machine.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardiograph/cardiograph/internal/artifact"
	"github.com/cardiograph/cardiograph/internal/config"
	"github.com/cardiograph/cardiograph/internal/evaluate"
	"github.com/cardiograph/cardiograph/internal/logging"
	"github.com/cardiograph/cardiograph/internal/metrics"
	"github.com/cardiograph/cardiograph/internal/preprocess"
	"github.com/cardiograph/cardiograph/internal/train"
)

// State is a run lifecycle stage. Transitions are strictly ordered; a run
// that fails mid-stage keeps its last completed state.
type State string

const (
	StateInit      State = "INIT"
	StateLoaded    State = "LOADED"
	StateSplit     State = "SPLIT"
	StateBalanced  State = "BALANCED"
	StateScaled    State = "SCALED"
	StateTrained   State = "TRAINED"
	StateEvaluated State = "EVALUATED"
	StateReported  State = "REPORTED"
)

// stateOrder defines the only legal transition sequence.
var stateOrder = []State{
	StateInit, StateLoaded, StateSplit, StateBalanced, StateScaled,
	StateTrained, StateEvaluated, StateReported,
}

// Summary is the outcome of a completed run.
type Summary struct {
	RunID    string
	State    State
	Best     string
	Ranked   []evaluate.EvaluationRecord
	Statuses []train.FamilyStatus
}

// Runner executes training runs against a configuration.
type Runner struct {
	cfg *config.Config

	runID     string
	state     State
	lastStamp time.Time
}

// NewRunner builds a Runner for one run.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg, state: StateInit}
}

// advance moves the state machine one step and records the stage duration.
// Skipping or reordering states is a bug, not an input error, so it fails
// loudly.
func (r *Runner) advance(to State) error {
	cur, next := -1, -1
	for i, s := range stateOrder {
		if s == r.state {
			cur = i
		}
		if s == to {
			next = i
		}
	}
	if next != cur+1 {
		return fmt.Errorf("pipeline: illegal transition %s -> %s", r.state, to)
	}

	now := time.Now()
	metrics.ObserveStage(string(to), now.Sub(r.lastStamp))
	logging.Info().
		Str("run_id", r.runID).
		Str("state", string(to)).
		Dur("stage_duration", now.Sub(r.lastStamp)).
		Msg("Pipeline stage complete")
	r.state = to
	r.lastStamp = now
	return nil
}

// Run executes the complete pipeline and returns its summary. Training
// failures for individual families are tolerated; the run fails only when no
// family trains at all.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	r.runID = uuid.NewString()
	r.state = StateInit
	r.lastStamp = time.Now()

	logging.Info().
		Str("run_id", r.runID).
		Str("data", r.cfg.Pipeline.DataPath).
		Int64("seed", r.cfg.Pipeline.Seed).
		Msg("Training run started")

	var stageErr error
	pp := preprocess.Pipeline{
		TestRatio: r.cfg.Pipeline.TestRatio,
		Seed:      r.cfg.Pipeline.Seed,
		OnStage: func(s preprocess.Stage) {
			if err := r.advance(State(s)); err != nil && stageErr == nil {
				stageErr = err
			}
		},
	}
	result, err := pp.Run(r.cfg.Pipeline.DataPath)
	if err != nil {
		return nil, err
	}
	if stageErr != nil {
		return nil, stageErr
	}

	trainer := train.NewTrainer(r.cfg.Pipeline.CVFolds, r.cfg.Pipeline.Workers, r.cfg.Pipeline.Seed)
	fitted, statuses := trainer.TrainAll(ctx, result.XTrain, result.YTrain)
	for _, st := range statuses {
		metrics.ModelsTrainedTotal.WithLabelValues(st.Family, st.Status).Inc()
	}
	if len(fitted) == 0 {
		return nil, fmt.Errorf("pipeline: no model trained successfully")
	}
	if err := r.advance(StateTrained); err != nil {
		return nil, err
	}

	records := make([]evaluate.EvaluationRecord, 0, len(fitted))
	for _, fm := range fitted {
		rec := evaluate.EvaluateModel(fm.Clf, result.XTest, result.YTest, fm.Family)
		rec.CVScore = fm.CVScore
		records = append(records, rec)
		logging.Info().
			Str("model", rec.Name).
			Float64("f1", rec.F1).
			Float64("accuracy", rec.Accuracy).
			Bool("roc_auc_available", rec.AUCAvailable).
			Msg("Model evaluated")
	}
	ranked := evaluate.CompareModels(records)
	best := ranked[0]
	if err := r.advance(StateEvaluated); err != nil {
		return nil, err
	}

	if err := artifact.SaveAll(r.cfg.Pipeline.ModelDir, fitted, result.Scaler, result.Imputer, preprocess.NewEncoder()); err != nil {
		return nil, err
	}
	if err := artifact.SaveBestModel(r.cfg.Pipeline.ModelDir, artifact.BestModelInfo{
		Name: best.Name,
		Metrics: map[string]float64{
			"accuracy":  best.Accuracy,
			"precision": best.Precision,
			"recall":    best.Recall,
			"f1":        best.F1,
			"roc_auc":   best.AUC,
		},
	}); err != nil {
		return nil, err
	}

	report := &evaluate.Report{
		RunID:     r.runID,
		CreatedAt: time.Now(),
		Best:      best.Name,
		Models:    ranked,
	}
	if err := evaluate.SaveResults(r.cfg.Pipeline.ResultsDir, report); err != nil {
		return nil, err
	}
	if err := r.advance(StateReported); err != nil {
		return nil, err
	}

	logging.Info().
		Str("run_id", r.runID).
		Str("best_model", best.Name).
		Float64("f1", best.F1).
		Msg("Training run complete")

	return &Summary{
		RunID:    r.runID,
		State:    r.state,
		Best:     best.Name,
		Ranked:   ranked,
		Statuses: statuses,
	}, nil
}
