// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSampleCSV produces a small imbalanced source: 40 negative and 10
// positive records with a few missing cells.
func writeSampleCSV(t *testing.T) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(sampleHeader + "\n")
	for i := 0; i < 40; i++ {
		glucose := fmt.Sprintf("%d", 75+i%20)
		if i%10 == 0 {
			glucose = "" // exercise imputation
		}
		fmt.Fprintf(&b, "%d,%d,2,F,NO,0,0,NO,NO,NO,%d,%d,%d,%0.1f,%d,%s,0\n",
			i, 35+i%25, 180+i, 110+i%30, 70+i%15, 21.0+float64(i%8), 62+i%30, glucose)
	}
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "%d,%d,1,M,YES,%d,0,NO,YES,NO,%d,%d,%d,%0.1f,%d,%d,1\n",
			40+i, 50+i, 10+i, 245+i, 155+i, 95+i, 29.5+float64(i), 85+i, 120+i)
	}

	path := filepath.Join(t.TempDir(), "chd.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestPipelineRun(t *testing.T) {
	path := writeSampleCSV(t)

	var stages []Stage
	p := Pipeline{
		TestRatio: 0.2,
		Seed:      42,
		OnStage:   func(s Stage) { stages = append(stages, s) },
	}
	result, err := p.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantStages := []Stage{StageLoaded, StageSplit, StageBalanced, StageScaled}
	if len(stages) != len(wantStages) {
		t.Fatalf("stages = %v, want %v", stages, wantStages)
	}
	for i := range wantStages {
		if stages[i] != wantStages[i] {
			t.Fatalf("stage %d = %s, want %s", i, stages[i], wantStages[i])
		}
	}

	// Training partition is balanced after SMOTE.
	trainCounts := map[int]int{}
	for _, y := range result.YTrain {
		trainCounts[y]++
	}
	if trainCounts[0] != trainCounts[1] {
		t.Errorf("train class counts = %v, want balanced", trainCounts)
	}

	// The test partition keeps the source imbalance: 20% of each class.
	testCounts := map[int]int{}
	for _, y := range result.YTest {
		testCounts[y]++
	}
	if testCounts[0] != 8 || testCounts[1] != 2 {
		t.Errorf("test class counts = %v, want map[0:8 1:2]", testCounts)
	}

	if !result.Scaler.Fitted() {
		t.Error("scaler not fitted after Run")
	}
	if len(result.Imputer.Fill) != len(FeatureNames) {
		t.Errorf("imputer fill width = %d, want %d", len(result.Imputer.Fill), len(FeatureNames))
	}
	if len(result.XTrain) != len(result.YTrain) || len(result.XTest) != len(result.YTest) {
		t.Error("feature and label lengths disagree")
	}
}

func TestPipelineRunDeterministic(t *testing.T) {
	path := writeSampleCSV(t)
	p := Pipeline{TestRatio: 0.2, Seed: 42}

	a, err := p.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := p.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(a.XTrain) != len(b.XTrain) {
		t.Fatalf("train sizes differ: %d != %d", len(a.XTrain), len(b.XTrain))
	}
	for i := range a.XTrain {
		for j := range a.XTrain[i] {
			if a.XTrain[i][j] != b.XTrain[i][j] {
				t.Fatalf("XTrain[%d][%d] differs between identical runs", i, j)
			}
		}
	}
}
