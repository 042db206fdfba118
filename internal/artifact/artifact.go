// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package artifact persists and reloads the outputs of a training run: one
// gob file per fitted model, the fitted scaler, and a JSON feature schema
// binding the serving side to the exact fit-time feature order, category
// mappings and imputation statistics.
//
// All writes go through a write-then-rename so a crashed run never leaves a
// half-written artifact where the server could pick it up.
package artifact

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/cardiograph/cardiograph/internal/model"
	"github.com/cardiograph/cardiograph/internal/preprocess"
	"github.com/cardiograph/cardiograph/internal/train"
)

// Artifact file names within a model directory.
const (
	ScalerFile    = "scaler.gob"
	SchemaFile    = "schema.json"
	BestModelFile = "best_model.json"
)

// ErrArtifactMissing reports an absent artifact file. The server treats this
// as fatal at startup.
var ErrArtifactMissing = errors.New("artifact: file missing")

// SchemaMismatchError reports served input that does not match the persisted
// feature schema.
type SchemaMismatchError struct {
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: %s", e.Reason)
}

// Schema is the persisted feature contract: the ordered feature names the
// models were trained on, the categorical encodings fixed at fit time, and
// the imputer fill values (aligned with Features).
type Schema struct {
	Features []string                      `json:"features"`
	Label    string                        `json:"label"`
	Mappings map[string]map[string]float64 `json:"mappings"`
	Fill     []float64                     `json:"fill"`
}

// envelope wraps a serialized model with the metadata needed to reconstruct
// it: the family tag selects the concrete type, no reflection involved.
type envelope struct {
	Family  string
	Params  map[string]any
	CVScore float64
	Payload []byte
}

func init() {
	// Hyperparameter values travel through the envelope as interface values.
	gob.Register(int(0))
	gob.Register(float64(0))
	gob.Register("")
}

// ModelFile returns the artifact name for a family tag.
func ModelFile(family string) string {
	return "model_" + family + ".gob"
}

// SaveAll writes every fitted model, the scaler and the feature schema into
// dir, creating it if needed. Each file lands atomically; a failure removes
// the temp file and aborts the batch.
func SaveAll(dir string, models []*train.FittedModel, scaler *preprocess.StandardScaler, imputer *preprocess.Imputer, encoder *preprocess.Encoder) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: create dir: %w", err)
	}

	for _, fm := range models {
		if err := SaveModel(dir, fm); err != nil {
			return err
		}
	}

	raw, err := scaler.MarshalBinary()
	if err != nil {
		return fmt.Errorf("artifact: encode scaler: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, ScalerFile), raw); err != nil {
		return err
	}

	schema := Schema{
		Features: append([]string(nil), preprocess.FeatureNames...),
		Label:    preprocess.LabelName,
		Mappings: encoder.Mappings,
		Fill:     append([]float64(nil), imputer.Fill...),
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode schema: %w", err)
	}
	return writeAtomic(filepath.Join(dir, SchemaFile), data)
}

// SaveModel persists one fitted model.
func SaveModel(dir string, fm *train.FittedModel) error {
	payload, err := fm.Clf.MarshalBinary()
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", fm.Family, err)
	}
	env := envelope{
		Family:  fm.Family,
		Params:  fm.Params,
		CVScore: fm.CVScore,
		Payload: payload,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return fmt.Errorf("artifact: encode %s envelope: %w", fm.Family, err)
	}
	return writeAtomic(filepath.Join(dir, ModelFile(fm.Family)), buf.Bytes())
}

// LoadModel reconstructs a persisted model by family tag.
func LoadModel(dir, family string) (*train.FittedModel, error) {
	path := filepath.Join(dir, ModelFile(family))
	raw, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return nil, fmt.Errorf("artifact: decode %s: %w", path, err)
	}
	if env.Family != family {
		return nil, fmt.Errorf("artifact: %s holds family %q, expected %q", path, env.Family, family)
	}

	clf, err := model.NewByFamily(env.Family)
	if err != nil {
		return nil, fmt.Errorf("artifact: %s: %w", path, err)
	}
	if err := clf.UnmarshalBinary(env.Payload); err != nil {
		return nil, fmt.Errorf("artifact: decode %s payload: %w", path, err)
	}

	return &train.FittedModel{
		Family:  env.Family,
		Params:  env.Params,
		CVScore: env.CVScore,
		Clf:     clf,
	}, nil
}

// LoadScaler reloads the persisted standard scaler.
func LoadScaler(dir string) (*preprocess.StandardScaler, error) {
	raw, err := readArtifact(filepath.Join(dir, ScalerFile))
	if err != nil {
		return nil, err
	}
	var s preprocess.StandardScaler
	if err := s.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("artifact: decode scaler: %w", err)
	}
	return &s, nil
}

// LoadSchema reloads the persisted feature schema and checks its internal
// consistency against the canonical feature set.
func LoadSchema(dir string) (*Schema, error) {
	raw, err := readArtifact(filepath.Join(dir, SchemaFile))
	if err != nil {
		return nil, err
	}
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("artifact: decode schema: %w", err)
	}
	if len(s.Features) != len(preprocess.FeatureNames) {
		return nil, &SchemaMismatchError{Reason: fmt.Sprintf("schema has %d features, expected %d", len(s.Features), len(preprocess.FeatureNames))}
	}
	for i, name := range preprocess.FeatureNames {
		if s.Features[i] != name {
			return nil, &SchemaMismatchError{Reason: fmt.Sprintf("feature %d is %q, expected %q", i, s.Features[i], name)}
		}
	}
	if len(s.Fill) != len(s.Features) {
		return nil, &SchemaMismatchError{Reason: "fill values do not align with features"}
	}
	return &s, nil
}

// BestModelInfo is the pointer artifact naming the winning model with the
// metrics that selected it. The server uses it to decide which model file
// to load.
type BestModelInfo struct {
	Name    string             `json:"name"`
	Metrics map[string]float64 `json:"metrics"`
}

// SaveBestModel writes the best-model pointer artifact.
func SaveBestModel(dir string, info BestModelInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode best model info: %w", err)
	}
	return writeAtomic(filepath.Join(dir, BestModelFile), data)
}

// LoadBestModel reads the best-model pointer artifact.
func LoadBestModel(dir string) (*BestModelInfo, error) {
	raw, err := readArtifact(filepath.Join(dir, BestModelFile))
	if err != nil {
		return nil, err
	}
	var info BestModelInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("artifact: decode best model info: %w", err)
	}
	if info.Name == "" {
		return nil, fmt.Errorf("artifact: best model info has no name")
	}
	return &info, nil
}

func readArtifact(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	return raw, nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact: rename %s: %w", path, err)
	}
	return nil
}
