// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardiograph/cardiograph/internal/config"
	"github.com/cardiograph/cardiograph/internal/metrics"
)

// NewRouter wires the chi router: global middleware, the API routes and the
// prometheus endpoint.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(prometheusMiddleware)

	r.Get("/", h.Info)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// 0 disables rate limiting per the config contract.
		if cfg.Server.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))
		}

		r.Get("/health", h.Health)
		r.Get("/model", h.ModelInfo)
		r.Post("/model/reload", h.Reload)
		r.Post("/predict", h.Predict)
		r.Post("/analyze", h.Analyze)
	})

	return r
}

// prometheusMiddleware records request counts and latency per route.
func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		metrics.ObserveAPIRequest(r.Method, endpoint, ww.Status(), time.Since(start))
	})
}
