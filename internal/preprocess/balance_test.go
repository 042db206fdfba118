// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"math"
	"testing"
)

func TestBalanceEqualizesClasses(t *testing.T) {
	train := syntheticDataset(60, 15)

	balanced, err := Balance(train, 42)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	counts := balanced.classCounts()
	if counts[0] != counts[1] {
		t.Errorf("class counts after balancing = %v, want equal", counts)
	}
	if counts[0] != 60 {
		t.Errorf("majority count changed to %d, want 60", counts[0])
	}

	// The input dataset must not be touched.
	if train.Len() != 75 {
		t.Errorf("input dataset mutated: len = %d, want 75", train.Len())
	}
}

func TestBalanceSyntheticRowsInterpolate(t *testing.T) {
	train := syntheticDataset(40, 10)

	balanced, err := Balance(train, 1)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	// Minority feature values span [100, 110); synthetic rows interpolate
	// between real minority rows so they must stay inside the hull.
	for i := train.Len(); i < balanced.Len(); i++ {
		if balanced.Labels[i] != 1 {
			t.Fatalf("synthetic row %d has label %d, want minority 1", i, balanced.Labels[i])
		}
		v := balanced.Features[i][0]
		if v < 100 || v >= 110 {
			t.Errorf("synthetic feature value %v outside minority range [100, 110)", v)
		}
	}
}

func TestBalanceDeterministic(t *testing.T) {
	a, err := Balance(syntheticDataset(30, 8), 42)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	b, err := Balance(syntheticDataset(30, 8), 42)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !datasetsEqual(a, b) {
		t.Error("same seed produced different balanced datasets")
	}
}

func TestBalanceAlreadyBalanced(t *testing.T) {
	train := syntheticDataset(20, 20)
	balanced, err := Balance(train, 42)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balanced.Len() != train.Len() {
		t.Errorf("balanced len = %d, want unchanged %d", balanced.Len(), train.Len())
	}
}

func TestBalanceRejectsBadInput(t *testing.T) {
	withNaN := syntheticDataset(10, 5)
	withNaN.Features[0][3] = math.NaN()

	oneClass := syntheticDataset(10, 0)

	tiny := syntheticDataset(10, 1)

	tests := []struct {
		name string
		ds   *Dataset
	}{
		{name: "missing values", ds: withNaN},
		{name: "single class", ds: oneClass},
		{name: "minority too small", ds: tiny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Balance(tt.ds, 1); err == nil {
				t.Error("Balance succeeded, want error")
			}
		})
	}
}
