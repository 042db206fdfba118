// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/cardiograph/cardiograph/internal/logging"
)

// smoteNeighbors is the neighborhood size for synthetic sample interpolation.
const smoteNeighbors = 5

// Balance applies SMOTE-style synthetic oversampling to the minority class so
// both classes have equal counts. It must only ever be called on the training
// partition: the test partition stays untouched so evaluation reflects
// real-world prevalence. The input must already be imputed (no NaN cells).
func Balance(train *Dataset, seed int64) (*Dataset, error) {
	counts := train.classCounts()
	if len(counts) != 2 {
		return nil, errors.New("balance: expected exactly two classes")
	}
	if err := checkRectangular(train.Features); err != nil {
		return nil, err
	}
	for _, row := range train.Features {
		for _, v := range row {
			if isMissing(v) {
				return nil, errors.New("balance: dataset contains missing values, impute first")
			}
		}
	}

	minority, majority := minorityClass(counts)
	need := counts[majority] - counts[minority]
	if need == 0 {
		return train.clone(), nil
	}

	var minorityRows [][]float64
	for i, y := range train.Labels {
		if y == minority {
			minorityRows = append(minorityRows, train.Features[i])
		}
	}
	if len(minorityRows) < 2 {
		return nil, errors.New("balance: minority class too small to oversample")
	}

	k := smoteNeighbors
	if k >= len(minorityRows) {
		k = len(minorityRows) - 1
	}

	rng := rand.New(rand.NewSource(seed))
	out := train.clone()
	for n := 0; n < need; n++ {
		i := rng.Intn(len(minorityRows))
		base := minorityRows[i]
		neighbor := minorityRows[nearestOf(minorityRows, i, k, rng)]

		// Interpolate a synthetic sample on the segment between the base
		// sample and one of its k nearest minority neighbors.
		gap := rng.Float64()
		synth := make([]float64, len(base))
		for j := range base {
			synth[j] = base[j] + gap*(neighbor[j]-base[j])
		}
		out.Features = append(out.Features, synth)
		out.Labels = append(out.Labels, minority)
	}

	after := out.classCounts()
	logging.Info().
		Int("minority_before", counts[minority]).
		Int("majority", counts[majority]).
		Int("synthetic", need).
		Int("minority_after", after[minority]).
		Msg("Training partition balanced")
	return out, nil
}

// minorityClass returns (minority, majority) labels; ties break toward the
// smaller label so the result is deterministic.
func minorityClass(counts map[int]int) (minority, majority int) {
	labels := make([]int, 0, len(counts))
	for y := range counts {
		labels = append(labels, y)
	}
	sort.Ints(labels)
	minority, majority = labels[0], labels[1]
	if counts[labels[1]] < counts[labels[0]] {
		minority, majority = labels[1], labels[0]
	}
	return minority, majority
}

// nearestOf returns the index of a randomly chosen member of row i's k
// nearest neighbors (excluding itself) within rows.
func nearestOf(rows [][]float64, i, k int, rng *rand.Rand) int {
	type neighbor struct {
		idx  int
		dist float64
	}
	nbrs := make([]neighbor, 0, len(rows)-1)
	for j := range rows {
		if j == i {
			continue
		}
		nbrs = append(nbrs, neighbor{idx: j, dist: euclidSquared(rows[i], rows[j])})
	}
	sort.Slice(nbrs, func(a, b int) bool {
		if nbrs[a].dist != nbrs[b].dist {
			return nbrs[a].dist < nbrs[b].dist
		}
		return nbrs[a].idx < nbrs[b].idx
	})
	return nbrs[rng.Intn(k)].idx
}

// euclidSquared computes squared Euclidean distance; the square root is not
// needed for neighbor ranking.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
