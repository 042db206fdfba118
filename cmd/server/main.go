// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package main is the serving entry point.
//
// The server loads the persisted training artifacts (best model, scaler,
// feature schema) into an immutable serving context and exposes the
// prediction API over chi. Startup fails hard when any artifact is missing
// or corrupt: serving with partial preprocessing state would silently
// mis-predict, so the server refuses to start instead.
//
// Shutdown is graceful on SIGINT/SIGTERM with a 10s drain timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardiograph/cardiograph/internal/api"
	"github.com/cardiograph/cardiograph/internal/config"
	"github.com/cardiograph/cardiograph/internal/logging"
	"github.com/cardiograph/cardiograph/internal/predict"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	holder, err := predict.NewHolder(cfg.Pipeline.ModelDir)
	if err != nil {
		logging.Fatal().Err(err).Str("model_dir", cfg.Pipeline.ModelDir).
			Msg("Failed to load serving artifacts; run the trainer first")
	}

	handler := api.NewHandler(holder)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
	logging.Info().Msg("Server stopped")
}
