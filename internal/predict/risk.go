// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package predict

import (
	"fmt"
	"sort"

	"github.com/cardiograph/cardiograph/internal/preprocess"
)

// Severity tiers for a flagged risk factor.
const (
	SeverityLow      = "low"
	SeverityElevated = "elevated"
	SeveritySevere   = "severe"
)

// numericRange is the clinically normal band for a numeric feature, with an
// optional severe threshold above it.
type numericRange struct {
	min, max float64
	// severeAt flags the value at which the factor grades severe instead of
	// elevated; 0 means no severe tier for this feature.
	severeAt float64
}

var normalRanges = map[string]numericRange{
	"age":       {min: 18, max: 65},
	"totChol":   {min: 0, max: 200, severeAt: 240},
	"sysBP":     {min: 90, max: 140, severeAt: 160},
	"diaBP":     {min: 60, max: 90, severeAt: 100},
	"BMI":       {min: 18.5, max: 24.9, severeAt: 30},
	"heartRate": {min: 60, max: 100, severeAt: 120},
	"glucose":   {min: 70, max: 100, severeAt: 126},
}

// binaryFactors maps flag features to the factor name reported when set.
var binaryFactors = map[string]string{
	"is_smoking":   "smoking",
	"diabetes":     "diabetes",
	"prevalentHyp": "hypertension",
}

// featureColumn resolves feature names to columns once.
var featureColumn = func() map[string]int {
	m := make(map[string]int, len(preprocess.FeatureNames))
	for i, name := range preprocess.FeatureNames {
		m[name] = i
	}
	return m
}()

// RiskFactor is one flagged abnormality in a patient record.
type RiskFactor struct {
	Feature     string  `json:"feature"`
	Value       float64 `json:"value"`
	NormalRange string  `json:"normal_range"`
	Status      string  `json:"status"`
	Severity    string  `json:"severity"`
}

// RiskAnalysis summarizes the flagged factors of one record.
type RiskAnalysis struct {
	TotalRiskFactors int          `json:"total_risk_factors"`
	RiskFactors      []RiskFactor `json:"risk_factors"`
}

// AnalyzeRow inspects an imputed, unscaled feature row and flags every value
// outside its normal range plus every set binary risk flag. Factors report in
// schema order so the output is stable.
func AnalyzeRow(row []float64) RiskAnalysis {
	var factors []RiskFactor
	for _, name := range preprocess.FeatureNames {
		v := row[featureColumn[name]]

		if factor, isBinary := binaryFactors[name]; isBinary {
			if v == 1 {
				factors = append(factors, RiskFactor{
					Feature:     factor,
					Value:       v,
					NormalRange: "absent",
					Status:      "present",
					Severity:    SeverityElevated,
				})
			}
			continue
		}

		nr, graded := normalRanges[name]
		if !graded || (v >= nr.min && v <= nr.max) {
			continue
		}
		f := RiskFactor{
			Feature:     name,
			Value:       v,
			NormalRange: fmt.Sprintf("%g-%g", nr.min, nr.max),
		}
		if v < nr.min {
			f.Status = "below_normal"
			f.Severity = SeverityLow
		} else {
			f.Status = "above_normal"
			f.Severity = SeverityElevated
			if nr.severeAt > 0 && v >= nr.severeAt {
				f.Severity = SeveritySevere
			}
		}
		factors = append(factors, f)
	}
	return RiskAnalysis{TotalRiskFactors: len(factors), RiskFactors: factors}
}

// Recommendation is one piece of ranked lifestyle or clinical advice.
// Priority 1 is the most urgent.
type Recommendation struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Recommend derives ranked advice from the flagged factors and the overall
// risk level.
func Recommend(analysis RiskAnalysis, riskLevel string) []Recommendation {
	var recs []Recommendation
	add := func(title, message string, priority int) {
		recs = append(recs, Recommendation{Title: title, Message: message, Priority: priority})
	}

	if riskLevel == RiskHigh {
		add("Consult a cardiologist",
			"The predicted 10-year CHD risk is high. Schedule a cardiovascular assessment.", 1)
	}

	for _, f := range analysis.RiskFactors {
		switch f.Feature {
		case "smoking":
			add("Quit smoking",
				"Smoking is a major modifiable CHD risk factor. A cessation program is strongly advised.", 1)
		case "diabetes":
			add("Manage blood glucose",
				"Diabetes accelerates coronary disease. Keep glucose under regular medical supervision.", 1)
		case "hypertension":
			add("Control blood pressure",
				"Diagnosed hypertension requires consistent treatment and monitoring.", 1)
		case "sysBP", "diaBP":
			p := 2
			if f.Severity == SeveritySevere {
				p = 1
			}
			add("Lower blood pressure",
				fmt.Sprintf("Blood pressure reading %s is %s the normal range (%s). Reduce sodium intake and monitor regularly.",
					f.Feature, statusPhrase(f.Status), f.NormalRange), p)
		case "totChol":
			p := 2
			if f.Severity == SeveritySevere {
				p = 1
			}
			add("Reduce cholesterol",
				fmt.Sprintf("Total cholesterol %.0f exceeds the normal range (%s). Consider dietary changes and a lipid panel follow-up.",
					f.Value, f.NormalRange), p)
		case "glucose":
			p := 2
			if f.Severity == SeveritySevere {
				p = 1
			}
			add("Check blood glucose",
				fmt.Sprintf("Glucose %.0f is %s the normal range (%s). A fasting glucose test is recommended.",
					f.Value, statusPhrase(f.Status), f.NormalRange), p)
		case "BMI":
			add("Reach a healthy weight",
				fmt.Sprintf("BMI %.1f is %s the normal range (%s). Gradual weight management lowers cardiac load.",
					f.Value, statusPhrase(f.Status), f.NormalRange), 2)
		case "heartRate":
			add("Review resting heart rate",
				fmt.Sprintf("Resting heart rate %.0f is %s the normal range (%s).",
					f.Value, statusPhrase(f.Status), f.NormalRange), 3)
		case "age":
			add("Schedule regular checkups",
				"Age above 65 warrants routine cardiovascular screening.", 3)
		}
	}

	if len(recs) == 0 {
		add("Maintain current lifestyle",
			"No risk factors flagged. Keep up regular exercise and a balanced diet.", 3)
	}

	sort.SliceStable(recs, func(a, b int) bool { return recs[a].Priority < recs[b].Priority })
	return recs
}

func statusPhrase(status string) string {
	if status == "below_normal" {
		return "below"
	}
	return "above"
}

// FeatureVulnerability grades how close a currently acceptable value sits to
// its severe threshold.
type FeatureVulnerability struct {
	Feature       string  `json:"feature"`
	Value         float64 `json:"value"`
	Threshold     float64 `json:"threshold"`
	Vulnerability string  `json:"vulnerability"`
	Advice        string  `json:"advice"`
}

// RiskProgression is the preventive outlook attached to low-risk predictions:
// which features would push the patient toward higher risk first.
type RiskProgression struct {
	Summary  string                 `json:"summary"`
	Features []FeatureVulnerability `json:"features"`
}

// Progression analyzes a low-risk record for the features nearest their
// severe thresholds.
func Progression(row []float64) *RiskProgression {
	var feats []FeatureVulnerability
	watch := 0
	for _, name := range preprocess.FeatureNames {
		nr, ok := normalRanges[name]
		if !ok || nr.severeAt == 0 {
			continue
		}
		v := row[featureColumn[name]]
		fv := FeatureVulnerability{Feature: name, Value: v, Threshold: nr.severeAt}
		switch {
		case v >= 0.9*nr.severeAt:
			fv.Vulnerability = "high"
			fv.Advice = fmt.Sprintf("%s is within 10%% of its risk threshold; address it first.", name)
			watch++
		case v >= 0.75*nr.severeAt:
			fv.Vulnerability = "moderate"
			fv.Advice = fmt.Sprintf("%s is trending toward its risk threshold; monitor it.", name)
			watch++
		default:
			fv.Vulnerability = "low"
			fv.Advice = fmt.Sprintf("%s is well clear of its risk threshold.", name)
		}
		feats = append(feats, fv)
	}

	summary := "All tracked features are well clear of their risk thresholds."
	if watch > 0 {
		summary = fmt.Sprintf("%d feature(s) are approaching their risk thresholds.", watch)
	}
	return &RiskProgression{Summary: summary, Features: feats}
}
