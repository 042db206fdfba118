// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"math"
	"testing"
)

func TestConfusionCounts(t *testing.T) {
	yTrue := []int{1, 1, 0, 0, 1, 0}
	yPred := []int{1, 0, 0, 1, 1, 0}

	c := ConfusionCounts(yTrue, yPred)
	want := Confusion{TP: 2, FP: 1, TN: 2, FN: 1}
	if c != want {
		t.Errorf("ConfusionCounts = %+v, want %+v", c, want)
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	tests := []struct {
		name          string
		yTrue, yPred  []int
		wantPrecision float64
		wantRecall    float64
		wantF1        float64
	}{
		{
			name:          "mixed",
			yTrue:         []int{1, 1, 0, 0, 1, 0},
			yPred:         []int{1, 0, 0, 1, 1, 0},
			wantPrecision: 2.0 / 3.0,
			wantRecall:    2.0 / 3.0,
			wantF1:        2.0 / 3.0,
		},
		{
			name:          "perfect",
			yTrue:         []int{1, 0, 1},
			yPred:         []int{1, 0, 1},
			wantPrecision: 1, wantRecall: 1, wantF1: 1,
		},
		{
			name:  "no positive predictions",
			yTrue: []int{1, 1, 0},
			yPred: []int{0, 0, 0},
			// Precision undefined -> 0, recall 0, F1 0.
			wantPrecision: 0, wantRecall: 0, wantF1: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, r, f1 := PrecisionRecallF1(tt.yTrue, tt.yPred)
			if math.Abs(p-tt.wantPrecision) > 1e-12 {
				t.Errorf("precision = %v, want %v", p, tt.wantPrecision)
			}
			if math.Abs(r-tt.wantRecall) > 1e-12 {
				t.Errorf("recall = %v, want %v", r, tt.wantRecall)
			}
			if math.Abs(f1-tt.wantF1) > 1e-12 {
				t.Errorf("f1 = %v, want %v", f1, tt.wantF1)
			}
		})
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy([]int{1, 0, 1, 0}, []int{1, 0, 0, 0}); got != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}
	if got := Accuracy(nil, nil); got != 0 {
		t.Errorf("Accuracy of empty input = %v, want 0", got)
	}
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		yTrue  []int
		scores []float64
		want   float64
		wantOK bool
	}{
		{
			name:   "perfect ranking",
			yTrue:  []int{0, 0, 1, 1},
			scores: []float64{0.1, 0.2, 0.8, 0.9},
			want:   1, wantOK: true,
		},
		{
			name:   "inverted ranking",
			yTrue:  []int{1, 1, 0, 0},
			scores: []float64{0.1, 0.2, 0.8, 0.9},
			want:   0, wantOK: true,
		},
		{
			name:   "all tied scores",
			yTrue:  []int{0, 1, 0, 1},
			scores: []float64{0.5, 0.5, 0.5, 0.5},
			want:   0.5, wantOK: true,
		},
		{
			name:   "partial overlap",
			yTrue:  []int{0, 1, 0, 1},
			scores: []float64{0.3, 0.2, 0.6, 0.8},
			want:   0.5, wantOK: true,
		},
		{
			name:   "only positives",
			yTrue:  []int{1, 1},
			scores: []float64{0.5, 0.6},
			wantOK: false,
		},
		{
			name:   "only negatives",
			yTrue:  []int{0, 0},
			scores: []float64{0.5, 0.6},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ROCAUC(tt.yTrue, tt.scores)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ROCAUC = %v, want %v", got, tt.want)
			}
		})
	}
}
