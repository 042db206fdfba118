// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package model

import "sort"

// Confusion holds binary confusion-matrix counts (positive class = 1).
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// ConfusionCounts tallies the confusion matrix for 0/1 labels.
func ConfusionCounts(yTrue, yPred []int) Confusion {
	var c Confusion
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			c.TP++
		case yPred[i] == 1 && yTrue[i] == 0:
			c.FP++
		case yPred[i] == 0 && yTrue[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

// Accuracy returns the fraction of correct predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// PrecisionRecallF1 returns the positive-class precision, recall and F1.
// Undefined ratios (zero denominators) report as 0.
func PrecisionRecallF1(yTrue, yPred []int) (precision, recall, f1 float64) {
	c := ConfusionCounts(yTrue, yPred)
	if c.TP+c.FP > 0 {
		precision = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		recall = float64(c.TP) / float64(c.TP+c.FN)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// F1Score returns only the F1 component, the grid-search selection metric.
func F1Score(yTrue, yPred []int) float64 {
	_, _, f1 := PrecisionRecallF1(yTrue, yPred)
	return f1
}

// ROCAUC computes the area under the ROC curve from positive-class scores
// via the Mann-Whitney U statistic; tied scores contribute half. Returns
// ok=false when either class is absent, in which case AUC is undefined.
func ROCAUC(yTrue []int, scores []float64) (auc float64, ok bool) {
	pos, neg := 0, 0
	for _, y := range yTrue {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, false
	}

	// Rank-sum over scores; average ranks across ties.
	type scored struct {
		score float64
		label int
	}
	rows := make([]scored, len(scores))
	for i := range scores {
		rows[i] = scored{scores[i], yTrue[i]}
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].score < rows[b].score })

	rankSum := 0.0
	i := 0
	for i < len(rows) {
		j := i
		for j < len(rows) && rows[j].score == rows[i].score {
			j++
		}
		// Ranks are 1-based; tied entries share the average rank.
		avgRank := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			if rows[k].label == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	u := rankSum - float64(pos)*float64(pos+1)/2
	return u / (float64(pos) * float64(neg)), true
}
