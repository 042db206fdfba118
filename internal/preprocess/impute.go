// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"errors"
	"math"
	"sort"
)

// Imputer fills missing cells with a central tendency statistic: the median
// for numeric features and the mode for categorical ones. Statistics are
// computed once, on non-missing training values only, and reused for the test
// partition and every served record. Imputing from test data leaks
// information and is forbidden.
type Imputer struct {
	// Fill holds the per-feature imputation value, FeatureNames order.
	Fill []float64

	fitted bool
}

// NewImputer returns an unfitted imputer.
func NewImputer() *Imputer { return &Imputer{} }

// Fit computes the imputation statistics from the training partition.
func (im *Imputer) Fit(train *Dataset) error {
	if train.Len() == 0 {
		return errors.New("impute: empty training partition")
	}
	if err := checkRectangular(train.Features); err != nil {
		return err
	}

	im.Fill = make([]float64, len(FeatureNames))
	for j, name := range FeatureNames {
		col := make([]float64, 0, train.Len())
		for _, row := range train.Features {
			if !isMissing(row[j]) {
				col = append(col, row[j])
			}
		}
		if len(col) == 0 {
			// A feature missing in every training row cannot be recovered.
			im.Fill[j] = 0
			continue
		}
		if CategoricalFeatures[name] {
			im.Fill[j] = mode(col)
		} else {
			im.Fill[j] = median(col)
		}
	}
	im.fitted = true
	return nil
}

// Transform replaces missing cells in place using the fitted statistics.
func (im *Imputer) Transform(ds *Dataset) error {
	if !im.fitted {
		return errors.New("impute: Transform called before Fit")
	}
	for _, row := range ds.Features {
		im.FillRow(row)
	}
	return nil
}

// FillRow imputes a single feature row in place. Used by the serving adapter
// for optional fields on incoming records.
func (im *Imputer) FillRow(row []float64) {
	for j := range row {
		if isMissing(row[j]) {
			row[j] = im.Fill[j]
		}
	}
}

// median returns the middle value, averaging the two central values for even
// lengths. The input slice is not modified.
func median(values []float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// mode returns the most frequent value; ties break toward the smaller value
// so the statistic is deterministic.
func mode(values []float64) float64 {
	counts := make(map[float64]int)
	for _, v := range values {
		counts[v]++
	}
	best := math.Inf(1)
	bestCount := -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}
