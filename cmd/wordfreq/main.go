// Command wordfreq counts words and lines in a text file with a pool of
// workers, writes the words that occur more than once to a report, and
// optionally gzips the report and stores it in a database.
//
//	wordfreq [flags] <input_file>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"wordfreq/internal/compress"
	"wordfreq/internal/config"
	"wordfreq/internal/engine"
	"wordfreq/internal/freq"
	"wordfreq/internal/metrics"
	"wordfreq/internal/metrics/datadog"
	"wordfreq/internal/metrics/prompush"
	"wordfreq/internal/report"
	"wordfreq/internal/source"
	"wordfreq/internal/storage"

	// register all report sinks with the storage factory.
	_ "wordfreq/internal/storage/all"

	"go.uber.org/zap"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	cfg, err := config.LoadFromArgs(fs, os.Getenv, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fatalf("%v", err)
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		fatalf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	closeMetrics := setupMetrics(cfg, log)

	err = run(context.Background(), cfg, os.Stdout, log)
	closeMetrics()
	if err != nil {
		_ = log.Sync()
		fatalf("%v", err)
	}
}

// newLogger builds a development logger for -v and a quiet production
// logger otherwise. Both write to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopmentConfig().Build()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// setupMetrics installs the configured backend and returns a function that
// flushes it. A backend that fails to initialize leaves metrics disabled.
func setupMetrics(cfg *config.Config, log *zap.Logger) func() {
	var closer func() error

	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err := prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
		if err != nil {
			log.Warn("metrics: prompush init failed; using nop", zap.Error(err))
			return func() {}
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.StatsdAddr,
			Namespace:  "wordfreq.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			log.Warn("metrics: datadog init failed; using nop", zap.Error(err))
			return func() {}
		}
		metrics.SetBackend(b)
		closer = b.Close
	default:
		log.Debug("metrics: disabled", zap.String("backend", cfg.MetricsBackend))
		return func() {}
	}
	log.Debug("metrics: enabled", zap.String("backend", cfg.MetricsBackend), zap.String("job", cfg.Job))

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", zap.Error(err))
		}
		if closer != nil {
			if err := closer(); err != nil {
				log.Warn("metrics: close error", zap.Error(err))
			}
		}
	}
}

// run executes one counting job. Output steps start only after the count
// has succeeded.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer, log *zap.Logger) error {
	sched, err := engine.SchedulerByName(cfg.Scheduler)
	if err != nil {
		return err
	}
	hasher, err := freq.HasherByName(cfg.Hash)
	if err != nil {
		return err
	}
	order, err := report.ParseOrder(cfg.Order)
	if err != nil {
		return err
	}

	start := time.Now()
	data, err := source.ReadFile(cfg.Input)
	metrics.RecordStep(cfg.Job, "read", err, time.Since(start))
	if err != nil {
		return err
	}
	metrics.RecordCount(cfg.Job, "bytes", int64(len(data)))

	res, err := engine.Run(ctx, data, engine.Options{
		Workers:     cfg.Workers,
		MaxTokenLen: cfg.MaxToken,
		Buckets:     cfg.Buckets,
		Hasher:      hasher,
		Scheduler:   sched,
		Logger:      log,
	})
	if err != nil {
		metrics.RecordStep(cfg.Job, "scan", err, time.Since(start))
		return fmt.Errorf("count: %w", err)
	}
	metrics.RecordStep(cfg.Job, "scan", nil, res.ScanTime)
	metrics.RecordStep(cfg.Job, "merge", nil, res.MergeTime)
	metrics.RecordCount(cfg.Job, "words", int64(res.Words))
	metrics.RecordCount(cfg.Job, "lines", int64(res.Lines))
	metrics.RecordCount(cfg.Job, "unique", int64(res.Table.Len()))

	fmt.Fprintf(stdout, "Total word count: %d\n", res.Words)
	fmt.Fprintf(stdout, "Total line count: %d\n", res.Lines)
	fmt.Fprintf(stdout, "Processing time: %.4f seconds\n", (res.ScanTime + res.MergeTime).Seconds())

	start = time.Now()
	dups, err := report.WriteFile(cfg.Report, res.Table, order)
	elapsed := time.Since(start)
	metrics.RecordStep(cfg.Job, "write", err, elapsed)
	if err != nil {
		return err
	}
	metrics.RecordCount(cfg.Job, "duplicates", int64(dups))
	fmt.Fprintf(stdout, "\nDuplicate words stored in '%s'.\n", cfg.Report)
	fmt.Fprintf(stdout, "Writing time: %.4f seconds\n", elapsed.Seconds())

	if cfg.Gzip {
		start = time.Now()
		st, err := compress.GzipFile(cfg.Report, cfg.GzipPath(), cfg.GzipLevel)
		elapsed := time.Since(start)
		metrics.RecordStep(cfg.Job, "compress", err, elapsed)
		if err != nil {
			return err
		}
		log.Debug("compressed", zap.Int64("in", st.In), zap.Int64("out", st.Out), zap.Float64("ratio", st.Ratio()))
		fmt.Fprintf(stdout, "Compressed file saved as '%s'\n", cfg.GzipPath())
		fmt.Fprintf(stdout, "Compression time: %.4f seconds\n", elapsed.Seconds())
	}

	if cfg.Store != "" {
		start = time.Now()
		n, err := store(ctx, cfg, res, order)
		elapsed := time.Since(start)
		metrics.RecordStep(cfg.Job, "store", err, elapsed)
		if err != nil {
			return err
		}
		metrics.RecordCount(cfg.Job, "stored", n)
		fmt.Fprintf(stdout, "Stored %d duplicate words in %s table '%s'.\n", n, cfg.Store, cfg.StoreTable)
		fmt.Fprintf(stdout, "Storage time: %.4f seconds\n", elapsed.Seconds())
	}
	return nil
}

func store(ctx context.Context, cfg *config.Config, res *engine.Result, order report.Order) (n int64, err error) {
	sink, err := storage.New(ctx, storage.Config{Kind: cfg.Store, DSN: cfg.StoreDSN, Table: cfg.StoreTable})
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
		}
	}()

	r := storage.NewRun(cfg.Job, cfg.Input, res.Words, res.Lines, time.Now())
	n, err = sink.SaveDuplicates(ctx, r, report.Duplicates(res.Table, order))
	if err != nil {
		return n, fmt.Errorf("store duplicates: %w", err)
	}
	return n, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
