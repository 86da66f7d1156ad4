// Package sqlite implements a SQLite-backed storage.Sink using database/sql
// and the pure-Go modernc driver. Rows are written inside one transaction
// through a prepared INSERT.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wordfreq/internal/freq"
	"wordfreq/internal/storage"

	_ "modernc.org/sqlite"
)

// Sink writes duplicate-word rows into a SQLite table.
type Sink struct {
	db    *sql.DB
	table string
}

var _ storage.Sink = (*Sink)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg)
	})
}

// Open connects to cfg.DSN, pings it and creates cfg.Table if missing.
//
// DSN is passed directly to database/sql, for example:
//
//	"file:wordfreq.db?cache=shared"
//	"wordfreq.db"
func Open(ctx context.Context, cfg storage.Config) (*Sink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if !storage.ValidTable(cfg.Table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", cfg.Table)
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Sink{db: db, table: cfg.Table}
	if err := s.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id      TEXT    NOT NULL,
	input       TEXT    NOT NULL,
	word        TEXT    NOT NULL,
	count       INTEGER NOT NULL,
	words_total INTEGER NOT NULL,
	lines_total INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	return nil
}

// SaveDuplicates inserts one row per entry and returns the number inserted.
// Either every row of the run is committed or none is.
func (s *Sink) SaveDuplicates(ctx context.Context, run storage.Run, entries []freq.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(storage.Columns)), ", ")
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(storage.Columns, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, run.Row(e)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close releases the database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}
