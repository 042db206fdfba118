// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package main is the offline training entry point.
//
// It runs the complete pipeline once and exits: load the Framingham-style
// CSV, split, impute, balance, scale, grid-search every model family,
// evaluate on the held-out partition, and persist the artifacts plus the
// ranked report. The exit code is non-zero only when the run itself fails or
// no model family trained at all; individual family failures are reported in
// the status table and tolerated.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardiograph/cardiograph/internal/config"
	"github.com/cardiograph/cardiograph/internal/logging"
	"github.com/cardiograph/cardiograph/internal/pipeline"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(cfg)
	summary, err := runner.Run(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Training run failed")
	}

	// Per-model status table for the operator.
	fmt.Printf("\nrun %s\n", summary.RunID)
	fmt.Printf("%-10s %-10s %s\n", "MODEL", "STATUS", "DETAIL")
	for _, st := range summary.Statuses {
		detail := ""
		if st.Err != nil {
			detail = st.Err.Error()
		}
		fmt.Printf("%-10s %-10s %s\n", st.Family, st.Status, detail)
	}
	fmt.Printf("\n%-10s %-10s %-10s %-10s %-10s %s\n",
		"RANK", "MODEL", "F1", "ACCURACY", "ROC-AUC", "CONFUSION")
	for i, rec := range summary.Ranked {
		auc := "n/a"
		if rec.AUCAvailable {
			auc = fmt.Sprintf("%.4f", rec.AUC)
		}
		fmt.Printf("%-10d %-10s %-10.4f %-10.4f %-10s tp=%d fp=%d tn=%d fn=%d\n",
			i+1, rec.Name, rec.F1, rec.Accuracy, auc,
			rec.Confusion.TP, rec.Confusion.FP, rec.Confusion.TN, rec.Confusion.FN)
	}
	fmt.Printf("\nbest model: %s\n", summary.Best)
}
