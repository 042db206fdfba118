// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
)

// StandardScaler standardizes each feature column to zero mean and unit
// variance. It is fit exactly once, on the training partition, and is
// immutable afterwards: the same center/scale parameters transform the test
// partition and every served record.
type StandardScaler struct {
	Mean []float64
	Std  []float64

	fitted bool
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fitted reports whether Fit has run.
func (s *StandardScaler) Fitted() bool { return s.fitted }

// Fit computes per-column mean and standard deviation from the training
// features. Columns with zero variance scale by 1 so they pass through
// centered instead of dividing by zero.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("scale: empty training features")
	}
	if err := checkRectangular(X); err != nil {
		return err
	}

	cols := len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)
	n := float64(len(X))

	for j := 0; j < cols; j++ {
		for i := range X {
			s.Mean[j] += X[i][j]
		}
		s.Mean[j] /= n

		variance := 0.0
		for i := range X {
			d := X[i][j] - s.Mean[j]
			variance += d * d
		}
		s.Std[j] = math.Sqrt(variance / n)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fitted = true
	return nil
}

// Transform returns a standardized copy of X using the fitted parameters.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.fitted {
		return nil, errors.New("scale: Transform called before Fit")
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Mean) {
			return nil, errors.New("scale: feature width does not match fitted parameters")
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformRow standardizes a single row. Used on the serving path.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	out, err := s.Transform([][]float64{row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (s *StandardScaler) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(s.Mean); err != nil {
		return nil, err
	}
	if err := enc.Encode(s.Std); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (s *StandardScaler) UnmarshalBinary(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s.Mean); err != nil {
		return err
	}
	if err := dec.Decode(&s.Std); err != nil {
		return err
	}
	s.fitted = len(s.Mean) > 0
	return nil
}
