// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package preprocess

import (
	"fmt"
	"strings"
)

// DataLoadError reports an unreadable source or a source whose columns do not
// match the expected schema. It is fatal: a run aborts before any state change.
type DataLoadError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *DataLoadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("data load failed for %s: missing columns [%s]",
			e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("data load failed for %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// UnknownCategoryError reports a categorical value not seen at fit time.
// At serving time it rejects the single request; it never falls through to a
// default encoding.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %q", e.Value, e.Field)
}
