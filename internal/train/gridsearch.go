// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package train

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cardiograph/cardiograph/internal/model"
)

// FittedModel is the outcome of a grid search over one family: the selected
// configuration, the trained classifier (refit on the full training set) and
// the cross-validation score that selected it. It is created once per run,
// persisted, and only ever read afterwards.
type FittedModel struct {
	Family  string
	Params  Params
	CVScore float64
	Clf     model.Classifier
}

// GridSearch sweeps a ModelSpec's hyperparameter grid with stratified k-fold
// cross-validation, scoring candidates by F1 (the classes are imbalanced, so
// accuracy would reward the trivial majority predictor).
//
// Candidates are evaluated concurrently: each worker owns independent fold
// clones and writes no shared state, so results merge with a plain
// max-by-score reduce at the end.
type GridSearch struct {
	Folds   int
	Workers int
	Seed    int64
}

// Run performs the exhaustive search and refits the winning configuration on
// the full training set.
func (g *GridSearch) Run(ctx context.Context, spec ModelSpec, X [][]float64, y []int) (*FittedModel, error) {
	candidates := enumerate(spec.Grid)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("empty hyperparameter grid for %s", spec.Family)
	}

	folds := g.Folds
	if folds < 2 {
		folds = 5
	}
	assignment, err := stratifiedFolds(y, folds, g.Seed)
	if err != nil {
		return nil, err
	}

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scores := make([]float64, len(candidates))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for ci := range candidates {
		ci := ci
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := g.crossValidate(spec, candidates[ci], X, y, assignment, folds)
			if err != nil {
				return err
			}
			scores[ci] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Max-by-score reduce; ties keep the earliest candidate so selection is
	// deterministic.
	best := 0
	for ci := 1; ci < len(candidates); ci++ {
		if scores[ci] > scores[best] {
			best = ci
		}
	}

	clf, err := spec.New(candidates[best], g.Seed)
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(X, y); err != nil {
		return nil, err
	}

	return &FittedModel{
		Family:  spec.Family,
		Params:  candidates[best],
		CVScore: scores[best],
		Clf:     clf,
	}, nil
}

// crossValidate returns the mean F1 across folds for one configuration.
func (g *GridSearch) crossValidate(spec ModelSpec, p Params, X [][]float64, y []int, assignment []int, folds int) (float64, error) {
	total := 0.0
	for fold := 0; fold < folds; fold++ {
		var trX, vaX [][]float64
		var trY, vaY []int
		for i := range X {
			if assignment[i] == fold {
				vaX = append(vaX, X[i])
				vaY = append(vaY, y[i])
			} else {
				trX = append(trX, X[i])
				trY = append(trY, y[i])
			}
		}

		clf, err := spec.New(p, g.Seed)
		if err != nil {
			return 0, err
		}
		if err := clf.Fit(trX, trY); err != nil {
			return 0, err
		}
		total += model.F1Score(vaY, clf.Predict(vaX))
	}
	return total / float64(folds), nil
}

// stratifiedFolds assigns each row to a fold, round-robin within each class
// after a seeded shuffle, so every fold mirrors the class balance.
func stratifiedFolds(y []int, folds int, seed int64) ([]int, error) {
	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	for label, idx := range byClass {
		if len(idx) < folds {
			return nil, fmt.Errorf("class %d has %d samples, fewer than %d folds", label, len(idx), folds)
		}
	}

	labels := make([]int, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewSource(seed))
	assignment := make([]int, len(y))
	for _, label := range labels {
		idx := append([]int(nil), byClass[label]...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for pos, i := range idx {
			assignment[i] = pos % folds
		}
	}
	return assignment, nil
}

// enumerate expands a grid into the cartesian product of its values. Keys
// iterate in sorted order so candidate order is stable run to run.
func enumerate(grid map[string][]any) []Params {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []Params{{}}
	for _, key := range keys {
		values := grid[key]
		next := make([]Params, 0, len(out)*len(values))
		for _, base := range out {
			for _, v := range values {
				p := make(Params, len(base)+1)
				for bk, bv := range base {
					p[bk] = bv
				}
				p[key] = v
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}
