// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

package evaluate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/cardiograph/cardiograph/internal/model"
)

// Report is the persisted outcome of one evaluation run, ranked best first.
type Report struct {
	RunID     string             `json:"run_id"`
	CreatedAt time.Time          `json:"created_at"`
	Best      string             `json:"best_model"`
	Models    []EvaluationRecord `json:"models"`
}

// Store persists evaluation reports in sqlite so past runs stay queryable
// without re-running training.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	best_model TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS model_metrics (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	rank          INTEGER NOT NULL,
	name          TEXT NOT NULL,
	accuracy      REAL NOT NULL,
	precision     REAL NOT NULL,
	recall        REAL NOT NULL,
	f1            REAL NOT NULL,
	roc_auc       REAL,
	cv_f1         REAL NOT NULL,
	tp            INTEGER NOT NULL,
	fp            INTEGER NOT NULL,
	tn            INTEGER NOT NULL,
	fn            INTEGER NOT NULL,
	PRIMARY KEY (run_id, name)
);
`

// OpenStore opens (creating if needed) the report database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("evaluate: create report dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("evaluate: open report store: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("evaluate: init report schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveReport writes a ranked report in one transaction.
func (s *Store) SaveReport(r *Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("evaluate: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, created_at, best_model) VALUES (?, ?, ?)`,
		r.RunID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Best,
	); err != nil {
		return fmt.Errorf("evaluate: insert run: %w", err)
	}

	for rank, rec := range r.Models {
		auc := sql.NullFloat64{Float64: rec.AUC, Valid: rec.AUCAvailable}
		if _, err := tx.Exec(
			`INSERT INTO model_metrics
				(run_id, rank, name, accuracy, precision, recall, f1, roc_auc, cv_f1, tp, fp, tn, fn)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, rank, rec.Name, rec.Accuracy, rec.Precision, rec.Recall,
			rec.F1, auc, rec.CVScore,
			rec.Confusion.TP, rec.Confusion.FP, rec.Confusion.TN, rec.Confusion.FN,
		); err != nil {
			return fmt.Errorf("evaluate: insert metrics for %s: %w", rec.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("evaluate: commit: %w", err)
	}
	return nil
}

// LoadReport reads a run back, models in rank order.
func (s *Store) LoadReport(runID string) (*Report, error) {
	r := &Report{RunID: runID}

	var created string
	err := s.db.QueryRow(`SELECT created_at, best_model FROM runs WHERE id = ?`, runID).
		Scan(&created, &r.Best)
	if err != nil {
		return nil, fmt.Errorf("evaluate: load run %s: %w", runID, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("evaluate: parse run timestamp: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT name, accuracy, precision, recall, f1, roc_auc, cv_f1, tp, fp, tn, fn
		 FROM model_metrics WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("evaluate: load metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec EvaluationRecord
		var auc sql.NullFloat64
		var c model.Confusion
		if err := rows.Scan(&rec.Name, &rec.Accuracy, &rec.Precision, &rec.Recall,
			&rec.F1, &auc, &rec.CVScore, &c.TP, &c.FP, &c.TN, &c.FN); err != nil {
			return nil, fmt.Errorf("evaluate: scan metrics: %w", err)
		}
		rec.AUC, rec.AUCAvailable = auc.Float64, auc.Valid
		rec.Confusion = c
		r.Models = append(r.Models, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("evaluate: iterate metrics: %w", err)
	}
	return r, nil
}

// LatestReport returns the most recently saved run, or nil when the store is
// empty.
func (s *Store) LatestReport() (*Report, error) {
	var runID string
	err := s.db.QueryRow(`SELECT id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate: latest run: %w", err)
	}
	return s.LoadReport(runID)
}

// SaveResults persists a ranked report to both the sqlite store and a JSON
// file next to it, for consumers that cannot read sqlite.
func SaveResults(dir string, r *Report) error {
	store, err := OpenStore(filepath.Join(dir, "reports.db"))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveReport(r); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("evaluate: encode report: %w", err)
	}
	path := filepath.Join(dir, "report_"+r.RunID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("evaluate: write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("evaluate: rename report: %w", err)
	}
	return nil
}

// LoadResults reads a run back from the sqlite store under dir.
func LoadResults(dir, runID string) (*Report, error) {
	store, err := OpenStore(filepath.Join(dir, "reports.db"))
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadReport(runID)
}
