package config

import (
	"fmt"
	"strings"

	"wordfreq/internal/engine"
	"wordfreq/internal/freq"
	"wordfreq/internal/report"
	"wordfreq/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to the user but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path names the flag.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Gzip levels accepted by klauspost/compress: StatelessCompression (-3)
// through BestCompression (9).
const (
	minGzipLevel = -3
	maxGzipLevel = 9
)

// Validate lints c without mutating it. Callers decide whether warnings are
// fatal; errors always are.
func Validate(c *Config) []Issue {
	var issues []Issue
	errf := func(path, format string, args ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, args...)})
	}
	warnf := func(path, format string, args ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Input) == "" {
		errf("input", "an input file is required")
	}

	if c.Workers < 1 {
		errf("workers", "must be >= 1, got %d", c.Workers)
	}
	if _, err := engine.SchedulerByName(c.Scheduler); err != nil {
		errf("scheduler", "unknown scheduler %q; use parallel or sequential", c.Scheduler)
	}
	if c.MaxToken < 1 {
		errf("max_token", "must be >= 1, got %d", c.MaxToken)
	}
	switch {
	case c.Buckets < 1:
		errf("buckets", "must be >= 1, got %d", c.Buckets)
	case !isPrime(c.Buckets):
		warnf("buckets", "%d is not prime; DJB2 spreads poorly over composite bucket counts", c.Buckets)
	}
	if _, err := freq.HasherByName(c.Hash); err != nil {
		errf("hash", "unknown hash %q; use djb2 or xxh3", c.Hash)
	}

	if strings.TrimSpace(c.Report) == "" {
		errf("report", "a report path is required")
	}
	if _, err := report.ParseOrder(c.Order); err != nil {
		errf("order", "unknown order %q; use bucket, count or word", c.Order)
	}
	if c.Gzip && (c.GzipLevel < minGzipLevel || c.GzipLevel > maxGzipLevel) {
		errf("gzip_level", "must be in [%d, %d], got %d", minGzipLevel, maxGzipLevel, c.GzipLevel)
	}

	switch c.Store {
	case "":
	case "sqlite", "postgres", "mssql", "mysql":
		if strings.TrimSpace(c.StoreDSN) == "" {
			errf("store_dsn", "required when store=%s", c.Store)
		}
		if !storage.ValidTable(c.StoreTable) {
			errf("store_table", "%q is not a plain SQL identifier", c.StoreTable)
		}
	default:
		errf("store", "unknown store %q; use sqlite, postgres, mssql or mysql", c.Store)
	}

	switch c.MetricsBackend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(c.PushgatewayURL) == "" {
			errf("pushgateway_url", "required when metrics_backend=pushgateway")
		}
	case "datadog":
		if strings.TrimSpace(c.StatsdAddr) == "" {
			errf("statsd_addr", "required when metrics_backend=datadog")
		}
	default:
		errf("metrics_backend", "unknown backend %q; use none, pushgateway or datadog", c.MetricsBackend)
	}
	if strings.TrimSpace(c.Job) == "" {
		errf("job", "must not be empty; it labels metrics and stored runs")
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}
