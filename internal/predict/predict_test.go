// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package predict

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cardiograph/cardiograph/internal/artifact"
	"github.com/cardiograph/cardiograph/internal/model"
	"github.com/cardiograph/cardiograph/internal/preprocess"
	"github.com/cardiograph/cardiograph/internal/train"
)

// Patient profiles used to synthesize training data: one healthy cluster
// (class 0) and one high-risk cluster (class 1).
var lowProfile = map[string]float64{
	"age": 45, "education": 2, "sex": 0, "is_smoking": 0, "cigsPerDay": 0,
	"BPMeds": 0, "prevalentStroke": 0, "prevalentHyp": 0, "diabetes": 0,
	"totChol": 190, "sysBP": 118, "diaBP": 78, "BMI": 23.5, "heartRate": 72,
	"glucose": 84,
}

var highProfile = map[string]float64{
	"age": 62, "education": 1, "sex": 1, "is_smoking": 1, "cigsPerDay": 20,
	"BPMeds": 0, "prevalentStroke": 0, "prevalentHyp": 1, "diabetes": 0,
	"totChol": 290, "sysBP": 176, "diaBP": 102, "BMI": 34, "heartRate": 90,
	"glucose": 122,
}

func profileRow(profile map[string]float64, rng *rand.Rand) []float64 {
	row := make([]float64, len(preprocess.FeatureNames))
	for j, name := range preprocess.FeatureNames {
		v := profile[name]
		if !preprocess.CategoricalFeatures[name] {
			v += rng.NormFloat64() * 2
		}
		row[j] = v
	}
	return row
}

// buildArtifacts trains a model on the two clusters and persists the full
// artifact set into a temp directory.
func buildArtifacts(t *testing.T) string {
	t.Helper()

	rng := rand.New(rand.NewSource(11))
	var raw [][]float64
	var y []int
	for i := 0; i < 60; i++ {
		raw = append(raw, profileRow(lowProfile, rng))
		y = append(y, 0)
	}
	for i := 0; i < 60; i++ {
		raw = append(raw, profileRow(highProfile, rng))
		y = append(y, 1)
	}

	imputer := preprocess.NewImputer()
	if err := imputer.Fit(&preprocess.Dataset{Features: raw, Labels: y}); err != nil {
		t.Fatalf("imputer Fit: %v", err)
	}
	scaler := preprocess.NewStandardScaler()
	if err := scaler.Fit(raw); err != nil {
		t.Fatalf("scaler Fit: %v", err)
	}
	scaled, err := scaler.Transform(raw)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	clf := model.NewLogisticRegression()
	if err := clf.Fit(scaled, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	dir := t.TempDir()
	fm := &train.FittedModel{
		Family:  model.FamilyLogReg,
		Params:  train.Params{"learning_rate": 0.1},
		CVScore: 0.92,
		Clf:     clf,
	}
	if err := artifact.SaveAll(dir, []*train.FittedModel{fm}, scaler, imputer, preprocess.NewEncoder()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := artifact.SaveBestModel(dir, artifact.BestModelInfo{
		Name:    model.FamilyLogReg,
		Metrics: map[string]float64{"f1": 0.9},
	}); err != nil {
		t.Fatalf("SaveBestModel: %v", err)
	}
	return dir
}

func lowRiskInput() Input {
	return Input{
		"age": "45", "education": "2", "sex": "Male", "is_smoking": "No",
		"cigsPerDay": "0", "BPMeds": "No", "prevalentStroke": "No",
		"prevalentHyp": "No", "diabetes": "No", "totChol": "190",
		"sysBP": "120", "diaBP": "80", "BMI": "24.0", "heartRate": "75",
		"glucose": "85",
	}
}

func highRiskInput() Input {
	return Input{
		"age": "62", "education": "1", "sex": "Male", "is_smoking": "Yes",
		"cigsPerDay": "20", "BPMeds": "No", "prevalentStroke": "No",
		"prevalentHyp": "Yes", "diabetes": "No", "totChol": "300",
		"sysBP": "180", "diaBP": "100", "BMI": "35.0", "heartRate": "90",
		"glucose": "120",
	}
}

func TestPredictLowRiskScenario(t *testing.T) {
	sc, err := Load(buildArtifacts(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := sc.Predict(lowRiskInput())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if out.Prediction != 0 {
		t.Errorf("prediction = %d, want 0", out.Prediction)
	}
	if out.RiskLevel != RiskLow {
		t.Errorf("risk level = %q, want %q", out.RiskLevel, RiskLow)
	}
	if out.Probability == nil {
		t.Fatal("probability missing for a probability model")
	}
	if out.Probability.CHD >= mediumRiskFloor {
		t.Errorf("CHD probability = %v, want < %v", out.Probability.CHD, mediumRiskFloor)
	}
	if out.RiskAnalysis.TotalRiskFactors != 0 {
		t.Errorf("risk factors = %+v, want none", out.RiskAnalysis.RiskFactors)
	}
	// Low-risk predictions carry the preventive progression outlook.
	if out.RiskProgression == nil {
		t.Fatal("risk progression missing for a low-risk prediction")
	}
	if len(out.RiskProgression.Features) == 0 {
		t.Error("risk progression has no feature entries")
	}
	if len(out.Recommendations) == 0 {
		t.Error("no recommendations returned")
	}
}

func TestPredictHighRiskScenario(t *testing.T) {
	sc, err := Load(buildArtifacts(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := sc.Predict(highRiskInput())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if out.Prediction != 1 {
		t.Errorf("prediction = %d, want 1", out.Prediction)
	}
	if out.RiskLevel != RiskHigh {
		t.Errorf("risk level = %q, want %q", out.RiskLevel, RiskHigh)
	}
	if out.RiskProgression != nil {
		t.Error("risk progression present for a non-low prediction")
	}

	flagged := map[string]string{}
	for _, f := range out.RiskAnalysis.RiskFactors {
		flagged[f.Feature] = f.Severity
	}
	for _, want := range []string{"totChol", "sysBP", "BMI", "smoking", "hypertension"} {
		if _, ok := flagged[want]; !ok {
			t.Errorf("factor %q not flagged: %+v", want, out.RiskAnalysis.RiskFactors)
		}
	}
	if flagged["totChol"] != SeveritySevere || flagged["sysBP"] != SeveritySevere || flagged["BMI"] != SeveritySevere {
		t.Errorf("severities = %v, want severe for totChol/sysBP/BMI", flagged)
	}

	if len(out.Recommendations) == 0 {
		t.Fatal("no recommendations for a high-risk prediction")
	}
	if out.Recommendations[0].Priority != 1 {
		t.Errorf("top recommendation priority = %d, want 1", out.Recommendations[0].Priority)
	}
}

func TestPredictRejectsBadInput(t *testing.T) {
	sc, err := Load(buildArtifacts(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	t.Run("missing feature is a schema mismatch", func(t *testing.T) {
		in := lowRiskInput()
		delete(in, "glucose")
		_, err := sc.Predict(in)
		var mismatch *artifact.SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("error = %v, want *SchemaMismatchError", err)
		}
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		in := lowRiskInput()
		in["sex"] = "unknown"
		_, err := sc.Predict(in)
		var unknown *preprocess.UnknownCategoryError
		if !errors.As(err, &unknown) {
			t.Fatalf("error = %v, want *UnknownCategoryError", err)
		}
		if unknown.Field != "sex" {
			t.Errorf("error field = %q, want sex", unknown.Field)
		}
	})

	t.Run("empty value is imputed, not rejected", func(t *testing.T) {
		in := lowRiskInput()
		in["glucose"] = ""
		if _, err := sc.Predict(in); err != nil {
			t.Fatalf("Predict with empty glucose: %v", err)
		}
	})
}

func TestPredictNormalizesCategorySpellings(t *testing.T) {
	sc, err := Load(buildArtifacts(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	variants := []Input{
		lowRiskInput(),
		func() Input { in := lowRiskInput(); in["sex"] = "M"; return in }(),
		func() Input { in := lowRiskInput(); in["sex"] = "male"; return in }(),
		func() Input { in := lowRiskInput(); in["is_smoking"] = "NO"; return in }(),
		func() Input { in := lowRiskInput(); in["is_smoking"] = "n"; return in }(),
	}

	var first *Prediction
	for i, in := range variants {
		out, err := sc.Predict(in)
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if first == nil {
			first = out
			continue
		}
		if out.Prediction != first.Prediction || out.Probability.CHD != first.Probability.CHD {
			t.Errorf("variant %d prediction diverges from canonical spelling", i)
		}
	}
}

func TestHolderReload(t *testing.T) {
	dir := buildArtifacts(t)
	h, err := NewHolder(dir)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}

	before := h.Current()
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	after := h.Current()
	if before == after {
		t.Error("Reload did not swap in a fresh context")
	}
	if after.Fitted.Family != before.Fitted.Family {
		t.Errorf("reloaded family = %q, want %q", after.Fitted.Family, before.Fitted.Family)
	}
}

func TestNewHolderRequiresArtifacts(t *testing.T) {
	if _, err := NewHolder(t.TempDir()); !errors.Is(err, artifact.ErrArtifactMissing) {
		t.Errorf("NewHolder on empty dir = %v, want ErrArtifactMissing", err)
	}
}
