// Package config centralizes wordfreq configuration. Every tunable is a
// command-line flag whose default is seeded from an environment variable,
// so `-help` lists all knobs and explicit flags always win over env.
//
// Typical usage:
//
//	cfg, err := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-workers=4", "in.txt"})
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"wordfreq/internal/freq"
	"wordfreq/internal/token"
)

// ErrUsage is returned when the command line cannot be used to start a run:
// a flag failed to parse or the input path is missing.
var ErrUsage = errors.New("usage: wordfreq [flags] <input_file>")

// Config holds all process configuration derived from flags and
// environment variables. It is a plain value once loaded.
type Config struct {
	Input string // positional argument: the file to count

	// Engine tunables.
	Workers   int    // worker count; 1 runs a single worker
	Scheduler string // "parallel" or "sequential"
	MaxToken  int    // bytes kept per word; longer words are truncated
	Buckets   int    // hash table bucket count
	Hash      string // "djb2" or "xxh3"

	// Report output.
	Report    string // duplicate report path
	Order     string // "bucket", "count" or "word"
	Gzip      bool   // also write Report + ".gz"
	GzipLevel int    // klauspost/compress gzip level

	// Optional persistence of the duplicate report.
	Store      string // "", "sqlite", "postgres", "mssql" or "mysql"
	StoreDSN   string
	StoreTable string

	// Run metrics.
	MetricsBackend string // "none", "pushgateway" or "datadog"
	PushgatewayURL string
	StatsdAddr     string
	Job            string // metrics job name and run ID prefix

	Verbose bool // development logging at debug level
}

// GzipPath is the compressed report location.
func (c *Config) GzipPath() string { return c.Report + ".gz" }

// LoadFromArgs builds a Config by defining flags on fs, seeding each default
// from getenv, and parsing args. The first positional argument is the input
// file.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// Parse failures and a missing input return an error wrapping ErrUsage.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	// Engine
	fs.IntVar(&cfg.Workers, "workers", intEnvOrDefaultFn("WORDFREQ_WORKERS", runtime.NumCPU()), "Number of counting workers")
	fs.StringVar(&cfg.Scheduler, "scheduler", envOrDefaultFn("WORDFREQ_SCHEDULER", "parallel"), "Worker scheduler: 'parallel' or 'sequential'")
	fs.IntVar(&cfg.MaxToken, "max_token", intEnvOrDefaultFn("WORDFREQ_MAX_TOKEN", token.DefaultMaxLen), "Maximum stored word length in bytes; longer words are truncated")
	fs.IntVar(&cfg.Buckets, "buckets", intEnvOrDefaultFn("WORDFREQ_BUCKETS", freq.DefaultBuckets), "Hash table bucket count (a prime spreads best)")
	fs.StringVar(&cfg.Hash, "hash", envOrDefaultFn("WORDFREQ_HASH", "djb2"), "Bucket hash: 'djb2' or 'xxh3'")

	// Report
	fs.StringVar(&cfg.Report, "report", envOrDefaultFn("WORDFREQ_REPORT", "parallel_duplicate_word_count.txt"), "Duplicate report path")
	fs.StringVar(&cfg.Order, "order", envOrDefaultFn("WORDFREQ_ORDER", "bucket"), "Report order: 'bucket', 'count' or 'word'")
	fs.BoolVar(&cfg.Gzip, "gzip", boolEnvOrDefaultFn("WORDFREQ_GZIP", true), "Also write a gzip copy of the report")
	fs.IntVar(&cfg.GzipLevel, "gzip_level", intEnvOrDefaultFn("WORDFREQ_GZIP_LEVEL", -1), "Gzip level (-3..9, -1 = default)")

	// Storage
	fs.StringVar(&cfg.Store, "store", envOrDefaultFn("WORDFREQ_STORE", ""), "Persist duplicates to 'sqlite', 'postgres', 'mssql' or 'mysql' (empty disables)")
	fs.StringVar(&cfg.StoreDSN, "store_dsn", getenv("WORDFREQ_STORE_DSN"), "Database DSN for -store")
	fs.StringVar(&cfg.StoreTable, "store_table", envOrDefaultFn("WORDFREQ_STORE_TABLE", "duplicate_words"), "Destination table for -store")

	// Metrics
	fs.StringVar(&cfg.MetricsBackend, "metrics_backend", envOrDefaultFn("METRICS_BACKEND", "none"), "Metrics backend: 'none', 'pushgateway' or 'datadog'")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", envOrDefaultFn("PUSHGATEWAY_URL", "http://localhost:9091"), "Prometheus Pushgateway URL")
	fs.StringVar(&cfg.StatsdAddr, "statsd_addr", envOrDefaultFn("STATSD_ADDR", "127.0.0.1:8125"), "DogStatsD address")
	fs.StringVar(&cfg.Job, "job", envOrDefaultFn("WORDFREQ_JOB", "wordfreq"), "Job name for metrics and stored runs")

	fs.BoolVar(&cfg.Verbose, "v", boolEnvOrDefaultFn("WORDFREQ_VERBOSE", false), "Verbose (debug) logging")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() < 1 {
		return nil, ErrUsage
	}
	cfg.Input = fs.Arg(0)
	return cfg, nil
}

// Load is the production entry point: a fresh ContinueOnError flag set
// named after the program, os.Getenv, and os.Args[1:].
func Load() (*Config, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	return LoadFromArgs(fs, os.Getenv, os.Args[1:])
}
