// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a local SQLite record of query runs and the rows
// they retrieved, so a researcher can see what was asked and when.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// timeLayout is fixed-width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one archived query run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Expression string    `json:"expression" yaml:"expression"`
	Decision   string    `json:"decision" yaml:"decision"`
	Count      int       `json:"count" yaml:"count"`
	MaxResults int       `json:"max_results" yaml:"max_results"`
	Output     string    `json:"output,omitempty" yaml:"output,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Store manages the archive database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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
			id TEXT PRIMARY KEY,
			expression TEXT NOT NULL,
			decision TEXT NOT NULL,
			count INTEGER NOT NULL,
			max_results INTEGER NOT NULL,
			output TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			pmid TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			journal TEXT,
			pub_date TEXT,
			abstract TEXT,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_records (
			run_id TEXT NOT NULL REFERENCES runs(id),
			pmid TEXT NOT NULL REFERENCES records(pmid),
			position INTEGER NOT NULL,
			PRIMARY KEY (run_id, pmid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record archives a run and upserts its rows in one transaction. The
// stored Run, with its generated ID, is returned.
func (s *Store) Record(ctx context.Context, run Run, rows []types.CanonicalRow) (Run, error) {
	run.ID = uuid.NewString()
	run.CreatedAt = s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, expression, decision, count, max_results, output, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Expression, run.Decision, run.Count, run.MaxResults, run.Output,
		run.CreatedAt.Format(timeLayout),
	); err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stamp := run.CreatedAt.Format(timeLayout)
	for i, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (pmid, title, authors, journal, pub_date, abstract, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(pmid) DO UPDATE SET
			   title=excluded.title, authors=excluded.authors, journal=excluded.journal,
			   pub_date=excluded.pub_date, abstract=excluded.abstract, updated_at=excluded.updated_at`,
			r.ID, r.Title, r.Authors, r.Journal, r.PubDate, r.Abstract, stamp,
		); err != nil {
			return Run{}, fmt.Errorf("upserting record %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_records (run_id, pmid, position) VALUES (?, ?, ?)`,
			run.ID, r.ID, i,
		); err != nil {
			return Run{}, fmt.Errorf("linking record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, expression, decision, count, max_results, COALESCE(output, ''), created_at
	      FROM runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Expression, &r.Decision, &r.Count, &r.MaxResults, &r.Output, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(timeLayout, created); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunRecords returns the rows archived for a run in their export order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]types.CanonicalRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.pmid, r.title, r.authors, r.journal, r.pub_date, r.abstract
		 FROM run_records rr JOIN records r ON r.pmid = rr.pmid
		 WHERE rr.run_id = ? ORDER BY rr.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run records: %w", err)
	}
	defer rows.Close()

	var out []types.CanonicalRow
	for rows.Next() {
		var r types.CanonicalRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Authors, &r.Journal, &r.PubDate, &r.Abstract); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
