// Package store handles SQLite persistence of graded runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/chantest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and creates its tables.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			passed INTEGER NOT NULL,
			fail_reason TEXT NOT NULL,
			total INTEGER NOT NULL,
			success INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			success_rate REAL NOT NULL,
			speed REAL NOT NULL,
			least_successful_noise_level REAL NOT NULL,
			report_path TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_failures (
			run_id TEXT NOT NULL,
			test_index INTEGER NOT NULL,
			noise_level REAL NOT NULL,
			source BLOB NOT NULL,
			decoded BLOB NOT NULL,
			PRIMARY KEY (run_id, test_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a graded run and its failed tests. An empty run ID is
// replaced by a new UUID. The stored ID is returned.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, failures []model.RunFailure) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, passed, fail_reason, total, success, failed, success_rate, speed, least_successful_noise_level, report_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Passed,
		run.FailReason.String(),
		run.Total,
		run.Success,
		run.Failed,
		run.SuccessRate,
		run.Speed,
		run.LeastSuccessfulNoiseLevel,
		run.ReportPath,
	)
	if err != nil {
		return "", err
	}

	if len(failures) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_failures (run_id, test_index, noise_level, source, decoded)
			 VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, f := range failures {
			if _, err = stmt.ExecContext(ctx, run.ID, f.TestIndex, f.NoiseLevel, []byte(f.Source), []byte(f.Decoded)); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns stored runs oldest first, filtered by cfg.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, created_at, passed, fail_reason, total, success, failed,
			success_rate, speed, least_successful_noise_level, report_path
		FROM runs
		WHERE %s
		ORDER BY created_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var createdAt, reason string
		if err := rows.Scan(&run.ID, &createdAt, &run.Passed, &reason, &run.Total, &run.Success,
			&run.Failed, &run.SuccessRate, &run.Speed, &run.LeastSuccessfulNoiseLevel, &run.ReportPath); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = parsed
		if run.FailReason, err = model.ParseFailReason(reason); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}

// ListFailures returns the failed tests of a run ordered by test index. Texts are
// stored as blobs since noised and decoded bytes need not be valid UTF-8.
func (s *Store) ListFailures(ctx context.Context, runID string) ([]model.RunFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test_index, noise_level, source, decoded
		 FROM run_failures
		 WHERE run_id = ?
		 ORDER BY test_index ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var failures []model.RunFailure
	for rows.Next() {
		var f model.RunFailure
		var source, decoded []byte
		if err := rows.Scan(&f.TestIndex, &f.NoiseLevel, &source, &decoded); err != nil {
			return nil, err
		}
		f.Source, f.Decoded = string(source), string(decoded)
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return failures, nil
}
