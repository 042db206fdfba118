// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/cardiograph/cardiograph/internal/artifact"
	"github.com/cardiograph/cardiograph/internal/logging"
	"github.com/cardiograph/cardiograph/internal/metrics"
	"github.com/cardiograph/cardiograph/internal/predict"
	"github.com/cardiograph/cardiograph/internal/preprocess"
	"github.com/cardiograph/cardiograph/internal/validation"
)

// Version is the API version string reported by the info endpoint.
const Version = "1.0.0"

// Handler serves the prediction API against the current serving context.
type Handler struct {
	holder *predict.Holder
}

// NewHandler builds a Handler over the given context holder.
func NewHandler(holder *predict.Holder) *Handler {
	return &Handler{holder: holder}
}

// Info handles GET / with basic API discovery data.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name":    "cardiograph",
		"version": Version,
		"endpoints": []string{
			"GET /api/v1/health",
			"POST /api/v1/predict",
			"POST /api/v1/analyze",
			"GET /api/v1/model",
			"GET /metrics",
		},
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sc := h.holder.Current()
	if sc == nil {
		respondError(w, http.StatusServiceUnavailable, CodeInternal,
			"no model loaded", map[string]any{"model_loaded": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": true,
		"model":        sc.Fitted.Family,
	})
}

// ModelInfo handles GET /api/v1/model with the best-model metadata.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	sc := h.holder.Current()
	respondJSON(w, http.StatusOK, map[string]any{
		"name":     sc.BestInfo.Name,
		"metrics":  sc.BestInfo.Metrics,
		"cv_f1":    sc.Fitted.CVScore,
		"params":   sc.Fitted.Params,
		"features": sc.Schema.Features,
	})
}

// Predict handles POST /api/v1/predict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	out, err := h.holder.Current().Predict(input)
	if err != nil {
		respondPredictError(w, err)
		return
	}
	metrics.PredictionsTotal.WithLabelValues(out.RiskLevel).Inc()
	respondJSON(w, http.StatusOK, out)
}

// Analyze handles POST /api/v1/analyze: risk factors and normal ranges
// without a model call.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	analysis, err := h.holder.Current().Analyze(input)
	if err != nil {
		respondPredictError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

// Reload handles POST /api/v1/model/reload, swapping in freshly written
// artifacts without a restart.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.holder.Reload(); err != nil {
		logging.Error().Err(err).Msg("Artifact reload failed")
		respondError(w, http.StatusInternalServerError, CodeInternal,
			"artifact reload failed; previous model remains active", nil)
		return
	}
	sc := h.holder.Current()
	respondJSON(w, http.StatusOK, map[string]any{"model": sc.Fitted.Family})
}

// vitalBounds sanity-checks parseable numeric inputs before prediction.
// Pointers stay nil for absent or non-numeric values, which the pipeline
// handles itself.
type vitalBounds struct {
	Age       *float64 `validate:"omitempty,gte=1,lte=130"`
	TotChol   *float64 `validate:"omitempty,gte=0,lte=1000"`
	SysBP     *float64 `validate:"omitempty,gte=40,lte=350"`
	DiaBP     *float64 `validate:"omitempty,gte=20,lte=250"`
	BMI       *float64 `validate:"omitempty,gte=5,lte=120"`
	HeartRate *float64 `validate:"omitempty,gte=20,lte=300"`
	Glucose   *float64 `validate:"omitempty,gte=10,lte=1000"`
}

// decodeRecord parses and validates the request body into a raw patient
// record. Replies with an error response and returns ok=false on failure.
func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (predict.Input, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		metrics.PredictionErrors.WithLabelValues("invalid_request").Inc()
		respondError(w, http.StatusBadRequest, CodeBadRequest, "request body is not a JSON object", nil)
		return nil, false
	}

	input := make(predict.Input, len(body))
	for k, v := range body {
		input[k] = stringify(v)
	}

	bounds := vitalBounds{
		Age:       numeric(input, "age"),
		TotChol:   numeric(input, "totChol"),
		SysBP:     numeric(input, "sysBP"),
		DiaBP:     numeric(input, "diaBP"),
		BMI:       numeric(input, "BMI"),
		HeartRate: numeric(input, "heartRate"),
		Glucose:   numeric(input, "glucose"),
	}
	if verr := validation.ValidateStruct(&bounds); verr != nil {
		metrics.PredictionErrors.WithLabelValues("invalid_request").Inc()
		respondError(w, http.StatusBadRequest, CodeValidation, verr.Error(), verr.Details())
		return nil, false
	}
	return input, true
}

// stringify renders a decoded JSON value the way the encoder expects it.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "YES"
		}
		return "NO"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func numeric(in predict.Input, field string) *float64 {
	raw, ok := in[field]
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// respondPredictError maps pipeline errors onto the API error taxonomy.
func respondPredictError(w http.ResponseWriter, err error) {
	var unknownCat *preprocess.UnknownCategoryError
	var mismatch *artifact.SchemaMismatchError
	switch {
	case errors.As(err, &unknownCat):
		metrics.PredictionErrors.WithLabelValues("unknown_category").Inc()
		respondError(w, http.StatusBadRequest, CodeUnknownCategory, unknownCat.Error(),
			map[string]any{"field": unknownCat.Field, "value": unknownCat.Value})
	case errors.As(err, &mismatch):
		metrics.PredictionErrors.WithLabelValues("schema_mismatch").Inc()
		respondError(w, http.StatusBadRequest, CodeSchemaMismatch, mismatch.Error(), nil)
	default:
		logging.Error().Err(err).Msg("Prediction failed")
		respondError(w, http.StatusInternalServerError, CodeInternal, "prediction failed", nil)
	}
}
