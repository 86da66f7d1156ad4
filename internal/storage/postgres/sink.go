// Package postgres implements a Postgres storage.Sink using pgx v5. Rows are
// streamed with the COPY protocol into a table created on first use.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"wordfreq/internal/freq"
	"wordfreq/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink writes duplicate-word rows into a Postgres table.
type Sink struct {
	pool  *pgxpool.Pool
	table string
}

var _ storage.Sink = (*Sink)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg)
	})
}

// Open builds a pool for cfg.DSN, verifies the connection and creates
// cfg.Table if it does not exist.
func Open(ctx context.Context, cfg storage.Config) (*Sink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if !storage.ValidTable(cfg.Table) {
		return nil, fmt.Errorf("postgres: invalid table name %q", cfg.Table)
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &Sink{pool: pool, table: cfg.Table}
	if _, err := pool.Exec(ctx, createTableSQL(cfg.Table)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create table: %w", err)
	}
	return s, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id      text        NOT NULL,
	input       text        NOT NULL,
	word        text        NOT NULL,
	count       bigint      NOT NULL,
	words_total bigint      NOT NULL,
	lines_total bigint      NOT NULL,
	created_at  timestamptz NOT NULL
)`, pgFQN(table))
}

// SaveDuplicates COPYs one row per entry and returns the row count reported
// by the server.
func (s *Sink) SaveDuplicates(ctx context.Context, run storage.Run, entries []freq.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	n, err := s.pool.CopyFrom(ctx, splitFQN(s.table), storage.Columns, pgx.CopyFromSlice(len(entries),
		func(i int) ([]any, error) {
			return run.Row(entries[i]), nil
		}))
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Close releases the pool.
func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

// pgIdent quotes an identifier for use in SQL text.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.words" as
// "public"."words".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN turns "schema.table" into a pgx.Identifier for CopyFrom.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
