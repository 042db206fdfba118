// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"

	"github.com/cardiograph/cardiograph/internal/logging"
)

// Load reads the raw CSV source into a Dataset, encoding categorical fields
// with the canonical encoder. An "id" column is tolerated and dropped. Any
// unreadable source or missing schema column yields a DataLoadError.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := read(f, path)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("path", path).
		Int("records", ds.Len()).
		Msg("Dataset loaded")
	return ds, nil
}

// read parses CSV content. Split out from Load so tests can feed readers.
func read(r io.Reader, path string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	// Resolve every schema column to its CSV position.
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	var missing []string
	for _, name := range FeatureNames {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if _, ok := colIdx[LabelName]; !ok {
		missing = append(missing, LabelName)
	}
	if len(missing) > 0 {
		return nil, &DataLoadError{Path: path, Missing: missing}
	}

	enc := NewEncoder()
	ds := &Dataset{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Path: path, Err: err}
		}

		features := make([]float64, len(FeatureNames))
		for j, name := range FeatureNames {
			v, ok, encErr := enc.Encode(name, row[colIdx[name]])
			if encErr != nil {
				// Raw training data occasionally carries junk cells; treat
				// them as missing and let the imputer handle them. Serving
				// input is stricter and rejects unknowns outright.
				logging.Debug().
					Str("field", name).
					Str("value", row[colIdx[name]]).
					Msg("Unparseable cell treated as missing")
				ok = false
			}
			if !ok {
				features[j] = math.NaN()
				continue
			}
			features[j] = v
		}

		label, ok, err := enc.Encode(LabelName, row[colIdx[LabelName]])
		if err != nil || !ok {
			// A record without a usable label cannot train or evaluate.
			continue
		}

		ds.Features = append(ds.Features, features)
		ds.Labels = append(ds.Labels, int(label))
	}

	if ds.Len() == 0 {
		return nil, &DataLoadError{Path: path, Err: errors.New("no usable records")}
	}
	return ds, nil
}
