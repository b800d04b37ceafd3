// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a ledger of fetch runs and their per-URL
// outcomes in a SQLite database next to the downloads. The ledger is a
// report log only; it is never consulted to decide whether a URL gets
// downloaded again.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfgrab/pkg/types"
)

const dbFile = "history.db"

// Run is one recorded fetch invocation.
type Run struct {
	ID         int64
	Started    time.Time
	Query      string
	Filetype   string
	Site       string
	Downloaded int
	Skipped    int
	Failed     int
}

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at destFolder/history.db,
// creating the folder and the schema when absent.
func Open(destFolder string) (*Store, error) {
	if err := os.MkdirAll(destFolder, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", destFolder, err)
	}

	dbPath := filepath.Join(destFolder, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started TEXT NOT NULL,
			query TEXT,
			filetype TEXT,
			site TEXT,
			downloaded INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			url TEXT NOT NULL,
			local_path TEXT,
			skipped INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun inserts a run and its outcomes in one transaction and
// returns the new run's ID.
func (s *Store) RecordRun(cfg types.FetchConfig, started time.Time, outcomes []types.Outcome) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var downloaded, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			skipped++
		case o.Success:
			downloaded++
		default:
			failed++
		}
	}

	res, err := tx.Exec(
		`INSERT INTO runs (started, query, filetype, site, downloaded, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		started.UTC().Format(time.RFC3339), cfg.Query, cfg.Filetype, cfg.Site,
		downloaded, skipped, failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run ID: %w", err)
	}

	for _, o := range outcomes {
		if _, err := tx.Exec(
			`INSERT INTO outcomes (run_id, url, local_path, skipped, success, error)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, o.URL, o.LocalPath, o.Skipped, o.Success, o.Err,
		); err != nil {
			return 0, fmt.Errorf("inserting outcome for %s: %w", o.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started, query, filetype, site, downloaded, skipped, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Query, &r.Filetype, &r.Site,
			&r.Downloaded, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, started); parseErr == nil {
			r.Started = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the recorded outcomes for one run, in insert order.
func (s *Store) Outcomes(runID int64) ([]types.Outcome, error) {
	rows, err := s.db.Query(
		`SELECT url, local_path, skipped, success, error
		 FROM outcomes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var o types.Outcome
		if err := rows.Scan(&o.URL, &o.LocalPath, &o.Skipped, &o.Success, &o.Err); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
