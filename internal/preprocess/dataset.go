// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package preprocess implements the offline data preparation pipeline:
// loading raw tabular records, imputing missing values, encoding categorical
// fields, stratified train/test splitting, minority-class oversampling and
// feature scaling.
//
// The single most important invariant of the package is leakage avoidance:
// every fitted statistic (imputation medians and modes, scaler mean/stddev)
// is computed on the training partition only and reused verbatim for the test
// partition and for every record served later. Balancing touches the training
// partition only, so evaluation always reflects real-world class prevalence.
package preprocess

import (
	"fmt"
	"math"
)

// FeatureNames is the canonical ordered feature schema. Every matrix in the
// pipeline and every persisted artifact uses exactly this column order; a
// record that misses or reorders a feature is rejected, never zero-filled.
var FeatureNames = []string{
	"age",
	"education",
	"sex",
	"is_smoking",
	"cigsPerDay",
	"BPMeds",
	"prevalentStroke",
	"prevalentHyp",
	"diabetes",
	"totChol",
	"sysBP",
	"diaBP",
	"BMI",
	"heartRate",
	"glucose",
}

// LabelName is the binary 10-year CHD outcome column.
const LabelName = "TenYearCHD"

// CategoricalFeatures lists the features imputed with the mode rather than
// the median. Index positions refer to FeatureNames.
var CategoricalFeatures = map[string]bool{
	"education":       true,
	"sex":             true,
	"is_smoking":      true,
	"BPMeds":          true,
	"prevalentStroke": true,
	"prevalentHyp":    true,
	"diabetes":        true,
}

// Dataset is an ordered collection of encoded records. Features is row-major
// with columns in FeatureNames order; missing values are NaN until imputed.
type Dataset struct {
	Features [][]float64
	Labels   []int
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Features) }

// clone returns a deep copy so partition transforms never alias source rows.
func (d *Dataset) clone() *Dataset {
	out := &Dataset{
		Features: make([][]float64, len(d.Features)),
		Labels:   make([]int, len(d.Labels)),
	}
	for i, row := range d.Features {
		out.Features[i] = append([]float64(nil), row...)
	}
	copy(out.Labels, d.Labels)
	return out
}

// subset builds a new Dataset from the given row indices.
func (d *Dataset) subset(idx []int) *Dataset {
	out := &Dataset{
		Features: make([][]float64, 0, len(idx)),
		Labels:   make([]int, 0, len(idx)),
	}
	for _, i := range idx {
		out.Features = append(out.Features, append([]float64(nil), d.Features[i]...))
		out.Labels = append(out.Labels, d.Labels[i])
	}
	return out
}

// classCounts returns the number of records per label.
func (d *Dataset) classCounts() map[int]int {
	counts := make(map[int]int)
	for _, y := range d.Labels {
		counts[y]++
	}
	return counts
}

// featureIndex maps a feature name to its column, or -1.
func featureIndex(name string) int {
	for i, f := range FeatureNames {
		if f == name {
			return i
		}
	}
	return -1
}

// checkRectangular validates that every row has the full feature width.
func checkRectangular(X [][]float64) error {
	for i, row := range X {
		if len(row) != len(FeatureNames) {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), len(FeatureNames))
		}
	}
	return nil
}

// isMissing reports whether a cell is explicitly marked missing.
func isMissing(v float64) bool { return math.IsNaN(v) }
