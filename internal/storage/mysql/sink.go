// Package mysql implements a MySQL storage.Sink. MySQL has no COPY, so rows
// go out as multi-row INSERT statements inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wordfreq/internal/freq"
	"wordfreq/internal/storage"

	"github.com/go-sql-driver/mysql"
)

// batchRows bounds the rows per INSERT to stay well under max_allowed_packet.
const batchRows = 500

// Sink writes duplicate-word rows into a MySQL table.
type Sink struct {
	db    *sql.DB
	table string
}

var _ storage.Sink = (*Sink)(nil)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg)
	})
}

// Open parses cfg.DSN (user:pass@tcp(host:3306)/db), pings the server and
// creates cfg.Table if missing.
func Open(ctx context.Context, cfg storage.Config) (*Sink, error) {
	if !storage.ValidTable(cfg.Table) {
		return nil, fmt.Errorf("mysql: invalid table name %q", cfg.Table)
	}
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: dsn: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL(cfg.Table)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: create table: %w", err)
	}
	return &Sink{db: db, table: cfg.Table}, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id      VARCHAR(200) NOT NULL,
	input       TEXT         NOT NULL,
	word        VARCHAR(400) NOT NULL,
	count       BIGINT       NOT NULL,
	words_total BIGINT       NOT NULL,
	lines_total BIGINT       NOT NULL,
	created_at  DATETIME(6)  NOT NULL
)`, myFQN(table))
}

// insertSQL builds a multi-row INSERT for n rows.
func insertSQL(table string, n int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(storage.Columns)), ", ") + ")"
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", myFQN(table), strings.Join(storage.Columns, ", "))
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}
	return b.String()
}

// SaveDuplicates inserts entries in batches of batchRows within a single
// transaction.
func (s *Sink) SaveDuplicates(ctx context.Context, run storage.Run, entries []freq.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	var inserted int64
	for start := 0; start < len(entries); start += batchRows {
		end := min(start+batchRows, len(entries))
		args := make([]any, 0, (end-start)*len(storage.Columns))
		for _, e := range entries[start:end] {
			args = append(args, run.Row(e)...)
		}
		res, err := tx.ExecContext(ctx, insertSQL(s.table, end-start), args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Close releases the database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}

func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}
