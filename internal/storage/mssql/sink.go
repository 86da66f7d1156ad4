// Package mssql implements a SQL Server storage.Sink using the go-mssqldb
// bulk copy API inside one transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wordfreq/internal/freq"
	"wordfreq/internal/storage"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Sink writes duplicate-word rows into a SQL Server table.
type Sink struct {
	db    *sql.DB
	table string
}

var _ storage.Sink = (*Sink)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg)
	})
}

// Open validates and opens cfg.DSN (a sqlserver:// URL), pings the server
// and creates cfg.Table if it does not exist.
func Open(ctx context.Context, cfg storage.Config) (*Sink, error) {
	if !storage.ValidTable(cfg.Table) {
		return nil, fmt.Errorf("mssql: invalid table name %q", cfg.Table)
	}
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL(cfg.Table)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: create table: %w", err)
	}
	return &Sink{db: db, table: cfg.Table}, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
	run_id      NVARCHAR(200)  NOT NULL,
	input       NVARCHAR(4000) NOT NULL,
	word        NVARCHAR(400)  NOT NULL,
	count       BIGINT         NOT NULL,
	words_total BIGINT         NOT NULL,
	lines_total BIGINT         NOT NULL,
	created_at  DATETIME2      NOT NULL
)`, table, msFQN(table))
}

// SaveDuplicates bulk-copies one row per entry and returns the row count
// reported by the server.
func (s *Sink) SaveDuplicates(ctx context.Context, run storage.Run, entries []freq.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(s.table, mssql.BulkOptions{}, storage.Columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, run.Row(e)...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

// msIdent brackets an identifier.
func msIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// msFQN brackets each part of "schema.table".
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}
