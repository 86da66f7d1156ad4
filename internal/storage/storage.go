// Package storage persists duplicate-word reports to a database.
//
// Backends register a Factory for their kind at init time; callers open a
// Sink through New and never import a backend directly. Importing
// wordfreq/internal/storage/all enables every built-in backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"wordfreq/internal/freq"
)

// ErrUnknownKind is returned by New when no backend is registered for the
// requested kind.
var ErrUnknownKind = errors.New("unknown storage kind")

// Columns is the column order every backend writes.
var Columns = []string{"run_id", "input", "word", "count", "words_total", "lines_total", "created_at"}

// Config selects and configures a backend.
type Config struct {
	Kind  string // "sqlite", "postgres", "mssql" or "mysql"
	DSN   string
	Table string
}

// Run identifies one counting run; its fields are stored on every row.
type Run struct {
	ID    string
	Input string
	Words int
	Lines int
	At    time.Time
}

// NewRun stamps a run with an ID of the form <job>-<unix nanos>.
func NewRun(job, input string, words, lines int, at time.Time) Run {
	return Run{
		ID:    job + "-" + strconv.FormatInt(at.UnixNano(), 10),
		Input: input,
		Words: words,
		Lines: lines,
		At:    at,
	}
}

// Row flattens one entry into values aligned with Columns.
func (r Run) Row(e freq.Entry) []any {
	return []any{r.ID, r.Input, e.Word, int64(e.Count), int64(r.Words), int64(r.Lines), r.At.UTC()}
}

// Sink receives the duplicate entries of one run.
type Sink interface {
	SaveDuplicates(ctx context.Context, run Run, entries []freq.Entry) (int64, error)
	Close() error
}

// Factory opens a Sink for a Config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Sink using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: %w %q", ErrUnknownKind, cfg.Kind)
	}
	return f(ctx, cfg)
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTable reports whether name is a plain, optionally schema-qualified,
// SQL identifier. Table names are interpolated into DDL, so anything else
// is rejected.
func ValidTable(name string) bool {
	return identRE.MatchString(name)
}
