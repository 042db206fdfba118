// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package train

import (
	"context"
	"math/rand"
	"reflect"
	"testing"

	"github.com/cardiograph/cardiograph/internal/model"
)

func separableData(n int, seed int64) (X [][]float64, y []int) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		label := i % 2
		center := -2.0
		if label == 1 {
			center = 2.0
		}
		X = append(X, []float64{
			center + rng.NormFloat64()*0.4,
			center + rng.NormFloat64()*0.4,
		})
		y = append(y, label)
	}
	return X, y
}

func TestEnumerateCartesianProduct(t *testing.T) {
	grid := map[string][]any{
		"a": {1, 2},
		"b": {"x", "y", "z"},
	}

	got := enumerate(grid)
	if len(got) != 6 {
		t.Fatalf("candidates = %d, want 6", len(got))
	}

	// Sorted key order makes the candidate sequence stable.
	again := enumerate(grid)
	if !reflect.DeepEqual(got, again) {
		t.Error("enumerate is not deterministic")
	}

	seen := map[[2]any]bool{}
	for _, p := range got {
		seen[[2]any{p["a"], p["b"]}] = true
	}
	if len(seen) != 6 {
		t.Errorf("distinct combinations = %d, want 6", len(seen))
	}
}

func TestEnumerateEmptyGrid(t *testing.T) {
	got := enumerate(map[string][]any{})
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("empty grid = %v, want single empty candidate", got)
	}
}

func TestStratifiedFolds(t *testing.T) {
	y := make([]int, 100)
	for i := 60; i < 100; i++ {
		y[i] = 1
	}

	assignment, err := stratifiedFolds(y, 5, 42)
	if err != nil {
		t.Fatalf("stratifiedFolds: %v", err)
	}
	if len(assignment) != len(y) {
		t.Fatalf("assignment length = %d, want %d", len(assignment), len(y))
	}

	// Every fold holds the same class mix: 12 negatives, 8 positives.
	type key struct{ fold, label int }
	counts := map[key]int{}
	for i, fold := range assignment {
		if fold < 0 || fold >= 5 {
			t.Fatalf("row %d assigned to fold %d", i, fold)
		}
		counts[key{fold, y[i]}]++
	}
	for fold := 0; fold < 5; fold++ {
		if counts[key{fold, 0}] != 12 || counts[key{fold, 1}] != 8 {
			t.Errorf("fold %d mix = %d/%d, want 12/8",
				fold, counts[key{fold, 0}], counts[key{fold, 1}])
		}
	}
}

func TestStratifiedFoldsClassTooSmall(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 1, 1}
	if _, err := stratifiedFolds(y, 5, 1); err == nil {
		t.Error("stratifiedFolds succeeded with 2-sample class and 5 folds, want error")
	}
}

func TestGridSearchSelectsAndRefits(t *testing.T) {
	X, y := separableData(100, 1)

	spec := ModelSpec{
		Family: model.FamilyKNN,
		Grid: map[string][]any{
			"k": {1, 3, 5},
		},
		New: func(p Params, _ int64) (model.Classifier, error) {
			m := model.NewKNN()
			m.K = intParam(p, "k", m.K)
			return m, nil
		},
	}

	gs := GridSearch{Folds: 5, Workers: 2, Seed: 42}
	fitted, err := gs.Run(context.Background(), spec, X, y)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if fitted.Family != model.FamilyKNN {
		t.Errorf("family = %q, want %q", fitted.Family, model.FamilyKNN)
	}
	if fitted.CVScore <= 0.9 {
		t.Errorf("cv score = %v on separable data, want > 0.9", fitted.CVScore)
	}
	if _, ok := fitted.Params["k"]; !ok {
		t.Error("selected params missing grid key")
	}

	// The winner is refit on the full training set.
	pred := fitted.Clf.Predict(X)
	if acc := model.Accuracy(y, pred); acc < 0.95 {
		t.Errorf("refit accuracy = %v, want >= 0.95", acc)
	}
}

func TestGridSearchDeterministicSelection(t *testing.T) {
	X, y := separableData(80, 2)
	spec, ok := specByFamily(model.FamilyTree)
	if !ok {
		t.Fatal("dtree spec missing from catalog")
	}

	gs := GridSearch{Folds: 4, Workers: 4, Seed: 42}
	a, err := gs.Run(context.Background(), spec, X, y)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := gs.Run(context.Background(), spec, X, y)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(a.Params, b.Params) {
		t.Errorf("selected params differ between runs: %v vs %v", a.Params, b.Params)
	}
	if a.CVScore != b.CVScore {
		t.Errorf("cv scores differ between runs: %v vs %v", a.CVScore, b.CVScore)
	}
}

func TestGridSearchCanceledContext(t *testing.T) {
	X, y := separableData(60, 3)
	spec, _ := specByFamily(model.FamilyKNN)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := GridSearch{Folds: 3, Workers: 2, Seed: 1}
	if _, err := gs.Run(ctx, spec, X, y); err == nil {
		t.Error("Run with canceled context succeeded, want error")
	}
}
