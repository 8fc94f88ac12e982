// Package store handles SQLite persistence of render history.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/ddgheat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so rendered_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for render runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
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
			id INTEGER PRIMARY KEY,
			rendered_at TEXT NOT NULL,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			png_path TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			excluded INTEGER NOT NULL,
			duplicates INTEGER NOT NULL,
			residues INTEGER NOT NULL,
			positions INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			zmin REAL NOT NULL,
			zmax REAL NOT NULL,
			centered INTEGER NOT NULL,
			dup_policy TEXT NOT NULL,
			position_spec TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_rendered_at ON runs(rendered_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_input_path ON runs(input_path);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed render and returns its id.
func (s *Store) InsertRun(ctx context.Context, run model.Run) (int64, error) {
	centered := 0
	if run.Centered {
		centered = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (rendered_at, input_path, output_path, png_path, row_count, excluded, duplicates,
			residues, positions, cells, zmin, zmax, centered, dup_policy, position_spec)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RenderedAt.UTC().Format(timeLayout),
		run.InputPath,
		run.OutputPath,
		run.PNGPath,
		run.Rows,
		run.Excluded,
		run.Duplicates,
		run.Residues,
		run.Positions,
		run.Cells,
		run.ZMin,
		run.ZMax,
		centered,
		string(run.DupPolicy),
		run.PositionSpec,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rendered_at, input_path, output_path, png_path, row_count, excluded, duplicates,
			residues, positions, cells, zmin, zmax, centered, dup_policy, position_spec
		FROM runs
		ORDER BY rendered_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var renderedAt, policy string
		var centered int
		if err := rows.Scan(&run.ID, &renderedAt, &run.InputPath, &run.OutputPath, &run.PNGPath,
			&run.Rows, &run.Excluded, &run.Duplicates, &run.Residues, &run.Positions, &run.Cells,
			&run.ZMin, &run.ZMax, &centered, &policy, &run.PositionSpec); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, renderedAt)
		if err != nil {
			return nil, err
		}
		run.RenderedAt = parsed
		run.Centered = centered != 0
		run.DupPolicy = model.DuplicatePolicy(policy)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
