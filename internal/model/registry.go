// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import (
	"fmt"
	"sort"
)

// Family tags for the classifier registry. Artifacts persist the tag next to
// the model payload so loading can reconstruct the right concrete type
// without reflection.
const (
	FamilyLogReg = "logreg"
	FamilyKNN    = "knn"
	FamilyTree   = "dtree"
	FamilyForest = "forest"
	FamilySVM    = "linsvm"
)

// families maps each tag to a default-configured constructor.
var families = map[string]func() Classifier{
	FamilyLogReg: func() Classifier { return NewLogisticRegression() },
	FamilyKNN:    func() Classifier { return NewKNN() },
	FamilyTree:   func() Classifier { return NewDecisionTree() },
	FamilyForest: func() Classifier { return NewRandomForest() },
	FamilySVM:    func() Classifier { return NewLinearSVM() },
}

// NewByFamily constructs a default-configured classifier for the given tag.
func NewByFamily(family string) (Classifier, error) {
	ctor, ok := families[family]
	if !ok {
		return nil, fmt.Errorf("model: unknown family %q", family)
	}
	return ctor(), nil
}

// Families returns the registered family tags in sorted order.
func Families() []string {
	out := make([]string, 0, len(families))
	for f := range families {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
