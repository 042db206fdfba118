// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package api provides the HTTP surface of the serving adapter: the
// prediction and analysis endpoints, health and model info, all wrapped in a
// standard response envelope.
package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cardiograph/cardiograph/internal/logging"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response observability fields.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is the structured error object.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes returned by the API.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnknownCategory = "UNKNOWN_CATEGORY"
	CodeSchemaMismatch  = "SCHEMA_MISMATCH"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL_ERROR"
)

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, &Response{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// respondError writes an error envelope. Serving never returns partial
// predictions: an error response carries no data.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeEnvelope(w, status, &Response{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now()},
		Error:    &APIError{Code: code, Message: message, Details: details},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
