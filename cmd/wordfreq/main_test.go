package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordfreq/internal/config"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

const sample = "the Cat sat on the mat. The cat ran."

func testConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(in, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		Input:          in,
		Workers:        4,
		Scheduler:      "parallel",
		MaxToken:       99,
		Buckets:        10007,
		Hash:           "djb2",
		Report:         filepath.Join(dir, "report.txt"),
		Order:          "count",
		Gzip:           true,
		GzipLevel:      -1,
		StoreTable:     "duplicate_words",
		MetricsBackend: "none",
		Job:            "wordfreq-test",
	}
}

func TestRunSample(t *testing.T) {
	cfg := testConfig(t, sample)

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out, zap.NewNop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	stdout := out.String()
	for _, want := range []string{
		"Total word count: 9\n",
		"Total line count: 0\n",
		"Processing time: ",
		"\nDuplicate words stored in '" + cfg.Report + "'.\n",
		"Writing time: ",
		"Compressed file saved as '" + cfg.GzipPath() + "'\n",
		"Compression time: ",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}

	got, err := os.ReadFile(cfg.Report)
	if err != nil {
		t.Fatal(err)
	}
	want := "Duplicate Words:\nthe: 3 times\ncat: 2 times\n"
	if string(got) != want {
		t.Fatalf("report = %q, want %q", got, want)
	}

	f, err := os.Open(cfg.GzipPath())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	unzipped, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(unzipped) != want {
		t.Fatalf("gzip body = %q, want %q", unzipped, want)
	}
}

func TestRunWithoutGzip(t *testing.T) {
	cfg := testConfig(t, "a a\nb\n")
	cfg.Gzip = false
	cfg.Scheduler = "sequential"

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out, zap.NewNop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if strings.Contains(out.String(), "Compressed") {
		t.Fatalf("stdout mentions compression with gzip off:\n%s", out.String())
	}
	if _, err := os.Stat(cfg.GzipPath()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("gzip file exists with gzip off: %v", err)
	}
	if !strings.Contains(out.String(), "Total line count: 2\n") {
		t.Fatalf("stdout = %s", out.String())
	}
}

func TestRunStoresDuplicates(t *testing.T) {
	cfg := testConfig(t, sample)
	cfg.Store = "sqlite"
	cfg.StoreDSN = filepath.Join(t.TempDir(), "wordfreq.db")

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out, zap.NewNop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Stored 2 duplicate words in sqlite table 'duplicate_words'.") {
		t.Fatalf("stdout = %s", out.String())
	}

	db, err := sql.Open("sqlite", cfg.StoreDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var sum, words int
	if err := db.QueryRow("SELECT SUM(count), MAX(words_total) FROM duplicate_words").Scan(&sum, &words); err != nil {
		t.Fatal(err)
	}
	if sum != 5 || words != 9 {
		t.Fatalf("stored sum=%d words=%d, want 5 and 9", sum, words)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"missing input", func(c *config.Config) { c.Input = filepath.Join(t.TempDir(), "nope.txt") }, "open input:"},
		{"bad scheduler", func(c *config.Config) { c.Scheduler = "fifo" }, "unknown scheduler"},
		{"bad report dir", func(c *config.Config) { c.Report = filepath.Join(t.TempDir(), "no", "r.txt") }, "create report:"},
		{"unknown store", func(c *config.Config) { c.Store, c.StoreDSN = "redis", "x" }, "open store:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, sample)
			tt.mutate(cfg)
			err := run(context.Background(), cfg, io.Discard, zap.NewNop())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("run() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunCanceledWritesNothing(t *testing.T) {
	cfg := testConfig(t, sample)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, cfg, &out, zap.NewNop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run() error = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want nothing", out.String())
	}
	if _, err := os.Stat(cfg.Report); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("report written after cancel: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		log, err := newLogger(verbose)
		if err != nil {
			t.Fatalf("newLogger(%v) error = %v", verbose, err)
		}
		if got := log.Core().Enabled(zap.DebugLevel); got != verbose {
			t.Fatalf("newLogger(%v) debug enabled = %v", verbose, got)
		}
	}
}
