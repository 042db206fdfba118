// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package evaluate scores fitted models against the held-out test partition,
// ranks them, and persists the comparison report.
package evaluate

import (
	"sort"

	"github.com/cardiograph/cardiograph/internal/model"
)

// EvaluationRecord holds the test-set metrics for one model. ROC-AUC is only
// meaningful when the model exposes probabilities; AUCAvailable distinguishes
// "unavailable" from a genuine zero.
type EvaluationRecord struct {
	Name         string          `json:"name"`
	Accuracy     float64         `json:"accuracy"`
	Precision    float64         `json:"precision"`
	Recall       float64         `json:"recall"`
	F1           float64         `json:"f1"`
	AUC          float64         `json:"roc_auc"`
	AUCAvailable bool            `json:"roc_auc_available"`
	Confusion    model.Confusion `json:"confusion"`
	CVScore      float64         `json:"cv_f1"`
}

// EvaluateModel scores one fitted classifier on the test partition.
func EvaluateModel(clf model.Classifier, XTest [][]float64, yTest []int, name string) EvaluationRecord {
	pred := clf.Predict(XTest)
	precision, recall, f1 := model.PrecisionRecallF1(yTest, pred)

	rec := EvaluationRecord{
		Name:      name,
		Accuracy:  model.Accuracy(yTest, pred),
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Confusion: model.ConfusionCounts(yTest, pred),
	}
	if pc, ok := clf.(model.ProbabilityClassifier); ok {
		if auc, defined := model.ROCAUC(yTest, pc.PredictProba(XTest)); defined {
			rec.AUC = auc
			rec.AUCAvailable = true
		}
	}
	return rec
}

// CompareModels returns the records ranked best first: F1 descending, then
// ROC-AUC descending with unavailable AUC ranking below any available one,
// then accuracy descending. The input slice is not modified.
func CompareModels(records []EvaluationRecord) []EvaluationRecord {
	ranked := append([]EvaluationRecord(nil), records...)
	sort.SliceStable(ranked, func(a, b int) bool {
		ra, rb := ranked[a], ranked[b]
		if ra.F1 != rb.F1 {
			return ra.F1 > rb.F1
		}
		if ra.AUCAvailable != rb.AUCAvailable {
			return ra.AUCAvailable
		}
		if ra.AUCAvailable && ra.AUC != rb.AUC {
			return ra.AUC > rb.AUC
		}
		return ra.Accuracy > rb.Accuracy
	})
	return ranked
}
