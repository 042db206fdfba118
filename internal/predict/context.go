// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package predict is the serving adapter: it loads the persisted training
// artifacts into an immutable context and turns raw patient records into risk
// predictions with the exact preprocessing the models were trained with.
package predict

import (
	"fmt"
	"sync/atomic"

	"github.com/cardiograph/cardiograph/internal/artifact"
	"github.com/cardiograph/cardiograph/internal/logging"
	"github.com/cardiograph/cardiograph/internal/preprocess"
	"github.com/cardiograph/cardiograph/internal/train"
)

// ServingContext bundles everything a prediction needs: the best fitted
// model, the fit-time scaler, imputer statistics, category mappings and the
// ordered feature schema. A context is immutable after construction; requests
// only ever read it.
type ServingContext struct {
	Fitted   *train.FittedModel
	Scaler   *preprocess.StandardScaler
	Imputer  *preprocess.Imputer
	Encoder  *preprocess.Encoder
	Schema   *artifact.Schema
	BestInfo *artifact.BestModelInfo
}

// Load builds a serving context from the artifact directory. Any missing or
// corrupt artifact fails the load; the server refuses to start rather than
// serve with partial state.
func Load(dir string) (*ServingContext, error) {
	info, err := artifact.LoadBestModel(dir)
	if err != nil {
		return nil, err
	}
	fm, err := artifact.LoadModel(dir, info.Name)
	if err != nil {
		return nil, err
	}
	scaler, err := artifact.LoadScaler(dir)
	if err != nil {
		return nil, err
	}
	schema, err := artifact.LoadSchema(dir)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("model", info.Name).
		Float64("cv_f1", fm.CVScore).
		Msg("Serving context loaded")

	return &ServingContext{
		Fitted:   fm,
		Scaler:   scaler,
		Imputer:  &preprocess.Imputer{Fill: schema.Fill},
		Encoder:  &preprocess.Encoder{Mappings: schema.Mappings},
		Schema:   schema,
		BestInfo: info,
	}, nil
}

// Holder publishes the current serving context to request handlers. Reload
// builds a fresh context off to the side and swaps it in atomically, so
// in-flight requests keep the context they started with.
type Holder struct {
	dir string
	ctx atomic.Pointer[ServingContext]
}

// NewHolder loads the initial context from dir.
func NewHolder(dir string) (*Holder, error) {
	sc, err := Load(dir)
	if err != nil {
		return nil, fmt.Errorf("predict: initial load: %w", err)
	}
	h := &Holder{dir: dir}
	h.ctx.Store(sc)
	return h, nil
}

// Current returns the active serving context.
func (h *Holder) Current() *ServingContext { return h.ctx.Load() }

// Reload replaces the active context with a freshly loaded one. On failure
// the previous context stays active.
func (h *Holder) Reload() error {
	sc, err := Load(h.dir)
	if err != nil {
		return fmt.Errorf("predict: reload: %w", err)
	}
	h.ctx.Store(sc)
	return nil
}
