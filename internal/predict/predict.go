// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package predict

import (
	"math"
	"strings"

	"github.com/cardiograph/cardiograph/internal/artifact"
	"github.com/cardiograph/cardiograph/internal/model"
	"github.com/cardiograph/cardiograph/internal/preprocess"
)

// Risk level labels by CHD probability.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Probability boundaries for the risk levels.
const (
	mediumRiskFloor = 0.3
	highRiskFloor   = 0.7
)

// Input is a raw patient record keyed by feature name. Values arrive as
// strings so categorical spellings ("Male", "yes") and explicit missingness
// ("", "NA") can be handled before encoding.
type Input map[string]string

// Probability carries the two class probabilities when the model exposes
// them.
type Probability struct {
	CHD   float64 `json:"chd"`
	NoCHD float64 `json:"no_chd"`
}

// Prediction is the stable serving output contract.
type Prediction struct {
	Prediction      int              `json:"prediction"`
	RiskLevel       string           `json:"risk_level"`
	Probability     *Probability     `json:"probability,omitempty"`
	RiskAnalysis    RiskAnalysis     `json:"risk_analysis"`
	Recommendations []Recommendation `json:"recommendations"`
	RiskProgression *RiskProgression `json:"risk_progression,omitempty"`
}

// Predict runs one record through the fit-time preprocessing and the best
// model. Serving is strict where training is lenient: a missing feature key
// is a schema mismatch and an unrecognized category is rejected, never
// defaulted.
func (sc *ServingContext) Predict(in Input) (*Prediction, error) {
	row, err := sc.vectorize(in)
	if err != nil {
		return nil, err
	}

	// Risk analysis reads the imputed, unscaled values.
	analysis := AnalyzeRow(row)

	scaled, err := sc.Scaler.TransformRow(row)
	if err != nil {
		return nil, err
	}

	out := &Prediction{RiskAnalysis: analysis}
	X := [][]float64{scaled}
	if pc, ok := sc.Fitted.Clf.(model.ProbabilityClassifier); ok {
		p := pc.PredictProba(X)[0]
		out.Probability = &Probability{CHD: p, NoCHD: 1 - p}
		if p >= 0.5 {
			out.Prediction = 1
		}
		out.RiskLevel = riskLevel(p)
	} else {
		out.Prediction = sc.Fitted.Clf.Predict(X)[0]
		// No probability to grade on; fall back to the hard class.
		if out.Prediction == 1 {
			out.RiskLevel = RiskHigh
		} else {
			out.RiskLevel = RiskLow
		}
	}

	out.Recommendations = Recommend(analysis, out.RiskLevel)
	if out.RiskLevel == RiskLow {
		out.RiskProgression = Progression(row)
	}
	return out, nil
}

// Analyze runs the risk-factor analysis alone, without a model call.
func (sc *ServingContext) Analyze(in Input) (*RiskAnalysis, error) {
	row, err := sc.vectorize(in)
	if err != nil {
		return nil, err
	}
	analysis := AnalyzeRow(row)
	return &analysis, nil
}

// vectorize converts a raw record into an imputed feature row in schema
// order.
func (sc *ServingContext) vectorize(in Input) ([]float64, error) {
	row := make([]float64, len(sc.Schema.Features))
	for j, name := range sc.Schema.Features {
		raw, present := in[name]
		if !present {
			return nil, &artifact.SchemaMismatchError{Reason: "missing feature " + name}
		}
		code, ok, err := sc.Encoder.Encode(name, normalizeCategory(name, raw))
		if err != nil {
			return nil, err
		}
		if !ok {
			row[j] = math.NaN()
		} else {
			row[j] = code
		}
	}
	sc.Imputer.FillRow(row)
	return row, nil
}

// normalizeCategory folds the external spellings of categorical values onto
// the canonical fit-time vocabulary. Unknown spellings pass through unchanged
// and fail in the encoder.
func normalizeCategory(field, raw string) string {
	if _, categorical := preprocess.CategoricalFeatures[field]; !categorical {
		return raw
	}
	up := strings.ToUpper(strings.TrimSpace(raw))
	switch field {
	case "sex":
		switch up {
		case "MALE":
			return "M"
		case "FEMALE":
			return "F"
		}
	default:
		switch up {
		case "Y", "TRUE":
			return "YES"
		case "N", "FALSE":
			return "NO"
		}
	}
	return raw
}

func riskLevel(p float64) string {
	switch {
	case p < mediumRiskFloor:
		return RiskLow
	case p < highRiskFloor:
		return RiskMedium
	default:
		return RiskHigh
	}
}
