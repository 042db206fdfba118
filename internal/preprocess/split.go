// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"fmt"
	"math/rand"
	"sort"
)

// Split partitions the dataset into train and test subsets with a
// deterministic stratified split: each class contributes the same held-out
// fraction, and the same seed always reproduces the same row membership.
func Split(ds *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("split: test ratio %g out of (0, 1)", testRatio)
	}
	if ds.Len() == 0 {
		return nil, nil, fmt.Errorf("split: empty dataset")
	}

	// Group row indices by class. Classes iterate in sorted order so the
	// shuffle consumes the rand stream identically on every run.
	byClass := make(map[int][]int)
	for i, y := range ds.Labels {
		byClass[y] = append(byClass[y], i)
	}
	classes := make([]int, 0, len(byClass))
	for y := range byClass {
		classes = append(classes, y)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, y := range classes {
		idx := append([]int(nil), byClass[y]...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		nTest := int(float64(len(idx)) * testRatio)
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}

	// Keep partitions in source order so downstream steps are stable.
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	return ds.subset(trainIdx), ds.subset(testIdx), nil
}
