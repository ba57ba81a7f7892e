// Package history keeps a local record of completed attempts in SQLite, so
// the learner retains their results even when the grading service was
// unreachable at submission time.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stemsi/exstem-client/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for attempt history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			attempt_id TEXT PRIMARY KEY,
			test_id TEXT NOT NULL,
			title TEXT NOT NULL,
			total_questions INTEGER NOT NULL,
			attempted INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			percentage REAL NOT NULL,
			source TEXT NOT NULL,
			duration_sec INTEGER NOT NULL,
			submitted_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_test_id ON attempts(test_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_submitted_at ON attempts(submitted_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordResult stores a completed attempt. UPSERT keyed by attempt id, so a
// replayed record never duplicates.
func (s *Store) RecordResult(ctx context.Context, st model.AttemptState, res model.SubmissionResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (attempt_id, test_id, title, total_questions, attempted, correct, wrong, skipped, percentage, source, duration_sec, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (attempt_id) DO UPDATE SET
		   attempted = excluded.attempted,
		   correct = excluded.correct,
		   wrong = excluded.wrong,
		   skipped = excluded.skipped,
		   percentage = excluded.percentage,
		   source = excluded.source,
		   submitted_at = excluded.submitted_at`,
		res.AttemptID,
		st.TestID,
		st.Title,
		res.TotalQuestions,
		res.Attempted,
		res.Correct,
		res.Wrong,
		res.Skipped,
		res.Percentage,
		string(res.Source),
		st.TotalSeconds-st.RemainingSeconds,
		res.SubmittedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// AttemptRecord is one row of attempt history.
type AttemptRecord struct {
	AttemptID      string
	TestID         string
	Title          string
	TotalQuestions int
	Attempted      int
	Correct        int
	Wrong          int
	Skipped        int
	Percentage     float64
	Source         string
	DurationSec    int
	SubmittedAt    time.Time
}

// ListAttempts returns the most recent attempts, newest first.
func (s *Store) ListAttempts(ctx context.Context, limit int) ([]AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt_id, test_id, title, total_questions, attempted, correct, wrong, skipped, percentage, source, duration_sec, submitted_at
		 FROM attempts ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var submittedAt string
		if err := rows.Scan(
			&rec.AttemptID, &rec.TestID, &rec.Title, &rec.TotalQuestions,
			&rec.Attempted, &rec.Correct, &rec.Wrong, &rec.Skipped,
			&rec.Percentage, &rec.Source, &rec.DurationSec, &submittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.SubmittedAt, err = time.Parse(time.RFC3339, submittedAt)
		if err != nil {
			return nil, fmt.Errorf("parse submitted_at for attempt %s: %w", rec.AttemptID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
