// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"math/rand"
	"testing"
)

// separableData builds a linearly separable two-cluster problem: class 0
// around (-2, -2) and class 1 around (+2, +2), with mild jitter.
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

func allFamilies() []Classifier {
	return []Classifier{
		NewLogisticRegression(),
		NewKNN(),
		NewDecisionTree(),
		NewRandomForest(),
		NewLinearSVM(),
	}
}

func TestClassifiersLearnSeparableData(t *testing.T) {
	trainX, trainY := separableData(200, 1)
	testX, testY := separableData(60, 2)

	for _, clf := range allFamilies() {
		family := familyOf(t, clf)
		t.Run(family, func(t *testing.T) {
			if err := clf.Fit(trainX, trainY); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			pred := clf.Predict(testX)
			if len(pred) != len(testY) {
				t.Fatalf("predictions = %d, want %d", len(pred), len(testY))
			}
			if acc := Accuracy(testY, pred); acc < 0.95 {
				t.Errorf("accuracy = %v on separable data, want >= 0.95", acc)
			}
		})
	}
}

func TestFitInputValidation(t *testing.T) {
	validX := [][]float64{{0, 0}, {1, 1}}

	tests := []struct {
		name string
		X    [][]float64
		y    []int
		want error
	}{
		{name: "empty", X: nil, y: nil, want: ErrEmptyTrainingSet},
		{name: "length mismatch", X: validX, y: []int{0}, want: ErrLengthMismatch},
		{name: "single class", X: validX, y: []int{1, 1}, want: ErrSingleClass},
		{name: "ragged rows", X: [][]float64{{0, 0}, {1}}, y: []int{0, 1}, want: ErrInconsistentWidth},
	}

	for _, clf := range allFamilies() {
		family := familyOf(t, clf)
		for _, tt := range tests {
			t.Run(family+"/"+tt.name, func(t *testing.T) {
				err := clf.Clone().Fit(tt.X, tt.y)
				if err != tt.want {
					t.Errorf("Fit error = %v, want %v", err, tt.want)
				}
			})
		}
	}
}

func TestCloneIsUnfitted(t *testing.T) {
	X, y := separableData(50, 3)
	for _, clf := range allFamilies() {
		family := familyOf(t, clf)
		t.Run(family, func(t *testing.T) {
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			clone := clf.Clone()
			if err := clone.Fit(X, y); err != nil {
				t.Fatalf("clone Fit: %v", err)
			}
			// Fitting the clone must not disturb the original.
			if got := clf.Predict(X); len(got) != len(y) {
				t.Fatalf("original broken after clone fit")
			}
		})
	}
}

func TestGobRoundTripPreservesPredictions(t *testing.T) {
	trainX, trainY := separableData(120, 4)
	testX, _ := separableData(40, 5)

	for _, clf := range allFamilies() {
		family := familyOf(t, clf)
		t.Run(family, func(t *testing.T) {
			if err := clf.Fit(trainX, trainY); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			data, err := clf.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}

			restored, err := NewByFamily(family)
			if err != nil {
				t.Fatalf("NewByFamily: %v", err)
			}
			if err := restored.UnmarshalBinary(data); err != nil {
				t.Fatalf("UnmarshalBinary: %v", err)
			}

			want := clf.Predict(testX)
			got := restored.Predict(testX)
			for i := range want {
				if want[i] != got[i] {
					t.Fatalf("prediction %d differs after round trip: %d != %d", i, got[i], want[i])
				}
			}
		})
	}
}

func TestDeterministicTraining(t *testing.T) {
	trainX, trainY := separableData(150, 6)
	testX, _ := separableData(50, 7)

	for _, family := range Families() {
		t.Run(family, func(t *testing.T) {
			a, err := NewByFamily(family)
			if err != nil {
				t.Fatalf("NewByFamily: %v", err)
			}
			b, _ := NewByFamily(family)
			if err := a.Fit(trainX, trainY); err != nil {
				t.Fatalf("Fit a: %v", err)
			}
			if err := b.Fit(trainX, trainY); err != nil {
				t.Fatalf("Fit b: %v", err)
			}
			pa, pb := a.Predict(testX), b.Predict(testX)
			for i := range pa {
				if pa[i] != pb[i] {
					t.Fatalf("identical fits disagree at row %d", i)
				}
			}
		})
	}
}

func TestProbabilityCapability(t *testing.T) {
	tests := []struct {
		clf       Classifier
		wantProba bool
	}{
		{clf: NewLogisticRegression(), wantProba: true},
		{clf: NewKNN(), wantProba: true},
		{clf: NewDecisionTree(), wantProba: true},
		{clf: NewRandomForest(), wantProba: true},
		{clf: NewLinearSVM(), wantProba: false},
	}
	for _, tt := range tests {
		family := familyOf(t, tt.clf)
		t.Run(family, func(t *testing.T) {
			_, ok := tt.clf.(ProbabilityClassifier)
			if ok != tt.wantProba {
				t.Errorf("ProbabilityClassifier = %v, want %v", ok, tt.wantProba)
			}
		})
	}
}

func TestProbabilitiesWithinUnitInterval(t *testing.T) {
	trainX, trainY := separableData(100, 8)
	testX, _ := separableData(30, 9)

	for _, clf := range allFamilies() {
		pc, ok := clf.(ProbabilityClassifier)
		if !ok {
			continue
		}
		family := familyOf(t, clf)
		t.Run(family, func(t *testing.T) {
			if err := pc.Fit(trainX, trainY); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			for i, p := range pc.PredictProba(testX) {
				if p < 0 || p > 1 {
					t.Errorf("proba[%d] = %v outside [0, 1]", i, p)
				}
			}
		})
	}
}

// familyOf resolves the registry tag for a concrete classifier.
func familyOf(t *testing.T, clf Classifier) string {
	t.Helper()
	switch clf.(type) {
	case *LogisticRegression:
		return FamilyLogReg
	case *KNN:
		return FamilyKNN
	case *DecisionTree:
		return FamilyTree
	case *RandomForest:
		return FamilyForest
	case *LinearSVM:
		return FamilySVM
	}
	t.Fatalf("unknown classifier type %T", clf)
	return ""
}
