// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"strconv"
	"strings"
)

// Encoder maps categorical field values to their canonical integer encoding.
// The mapping is fixed at fit time and persisted with the run; a value not in
// the mapping is an UnknownCategoryError, never a silent default.
type Encoder struct {
	// Mappings holds per-field value -> code tables. Keys are upper-cased
	// before lookup so "yes"/"Yes"/"YES" encode identically.
	Mappings map[string]map[string]float64
}

// NewEncoder returns the canonical encoder used for both training and serving.
func NewEncoder() *Encoder {
	yesNo := map[string]float64{"NO": 0, "YES": 1}
	return &Encoder{
		Mappings: map[string]map[string]float64{
			"sex":             {"F": 0, "M": 1},
			"is_smoking":      yesNo,
			"BPMeds":          yesNo,
			"prevalentStroke": yesNo,
			"prevalentHyp":    yesNo,
			"diabetes":        yesNo,
		},
	}
}

// Encode converts a raw categorical value to its code. Numeric strings pass
// through unchanged so sources that pre-encode flags as 0/1 still load. An
// empty value is reported as missing (NaN) via ok=false rather than an error,
// since missingness is handled by the imputer.
func (e *Encoder) Encode(field, raw string) (code float64, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return 0, false, nil
	}

	mapping, categorical := e.Mappings[field]
	if !categorical {
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return 0, false, &UnknownCategoryError{Field: field, Value: raw}
		}
		return v, true, nil
	}

	if v, found := mapping[strings.ToUpper(raw)]; found {
		return v, true, nil
	}
	// Tolerate sources that ship the code itself ("0"/"1").
	if v, perr := strconv.ParseFloat(raw, 64); perr == nil {
		for _, known := range mapping {
			if known == v {
				return v, true, nil
			}
		}
	}
	return 0, false, &UnknownCategoryError{Field: field, Value: raw}
}
