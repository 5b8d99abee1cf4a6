package journal

import (
	"fmt"
	"time"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/reconcile"
)

// Run is one recorded pass.
type Run struct {
	ID        int64     `json:"id"`
	SourceDir string    `json:"source_dir"`
	OutputDir string    `json:"output_dir"`
	DryRun    bool      `json:"dry_run"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Converted int       `json:"converted"`
	Skipped   int       `json:"skipped"`
	Deleted   int       `json:"deleted"`
	Retained  int       `json:"retained"`
	Failed    int       `json:"failed"`
	Error     string    `json:"error,omitempty"`
}

// Record stores a pass and its outcomes within a transaction. runErr is the
// error Run returned, if any.
func (db *DB) Record(report *reconcile.Report, sourceDir, outputDir string, runErr error) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	res, err := tx.Exec(`
		INSERT INTO runs (source_dir, output_dir, dry_run, started_at, finished_at,
		                  converted, skipped, deleted, retained, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sourceDir, outputDir, report.DryRun, report.Started.UTC(), report.Finished.UTC(),
		report.Count(reconcile.ActionConverted),
		report.Count(reconcile.ActionSkipped),
		report.Count(reconcile.ActionDeleted),
		report.Count(reconcile.ActionRetained),
		report.Count(reconcile.ActionFailed),
		errText)
	if err != nil {
		return 0, fmt.Errorf("journal: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal: run id: %w", err)
	}

	if len(report.Outcomes) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO outcomes (run_id, seq, action, source, output, title, reason) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("journal: prepare outcome insert: %w", err)
		}
		defer stmt.Close()
		for i, o := range report.Outcomes {
			if _, err := stmt.Exec(id, i, string(o.Action), o.Source, o.Output, o.Title, o.Reason); err != nil {
				return 0, fmt.Errorf("journal: insert outcome: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("journal: commit: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (db *DB) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, source_dir, output_dir, dry_run, started_at, finished_at,
		       converted, skipped, deleted, retained, failed, error
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SourceDir, &r.OutputDir, &r.DryRun, &r.Started, &r.Finished,
			&r.Converted, &r.Skipped, &r.Deleted, &r.Retained, &r.Failed, &r.Error); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Outcomes returns the recorded outcomes of a run in order. An unknown run id
// yields apperr.ErrNotFound.
func (db *DB) Outcomes(runID int64) ([]reconcile.Outcome, error) {
	var exists int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("journal: lookup run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("journal: run %d: %w", runID, apperr.ErrNotFound)
	}

	rows, err := db.conn.Query(`
		SELECT action, source, output, title, reason
		FROM outcomes
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: outcomes: %w", err)
	}
	defer rows.Close()

	var out []reconcile.Outcome
	for rows.Next() {
		var o reconcile.Outcome
		var action string
		if err := rows.Scan(&action, &o.Source, &o.Output, &o.Title, &o.Reason); err != nil {
			return nil, err
		}
		o.Action = reconcile.Action(action)
		out = append(out, o)
	}
	return out, rows.Err()
}
