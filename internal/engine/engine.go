// Package engine is the concurrent word-frequency aggregation core.
//
// Run plans the buffer into word-aligned chunks, scans every chunk into a
// private table under the configured Scheduler, waits for all of them, and
// then folds the private tables into one global table on the calling
// goroutine. The hot counting path takes no locks; the only
// synchronization is the scheduler's barrier.
package engine

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"

	"wordfreq/internal/freq"
	"wordfreq/internal/partition"
	"wordfreq/internal/token"
)

// Options configures a run. The zero value is usable.
type Options struct {
	// Workers is the number of chunks. <= 0 uses GOMAXPROCS.
	Workers int
	// MaxTokenLen truncates longer words. <= 0 uses token.DefaultMaxLen.
	MaxTokenLen int
	// Buckets and Hasher shape every table. Zero values keep freq defaults.
	Buckets int
	Hasher  freq.Hasher
	// Scheduler runs the per-chunk workers. nil uses Parallel{}.
	Scheduler Scheduler
	Logger    *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxTokenLen <= 0 {
		o.MaxTokenLen = token.DefaultMaxLen
	}
	if o.Scheduler == nil {
		o.Scheduler = Parallel{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) newTable() *freq.Table {
	return freq.New(freq.WithBuckets(o.Buckets), freq.WithHasher(o.Hasher))
}

// Result is the outcome of a run.
type Result struct {
	Table  *freq.Table
	Words  int
	Lines  int
	Chunks []partition.Chunk

	ScanTime  time.Duration
	MergeTime time.Duration
}

// Run counts words and lines in data. data must not be modified until Run
// returns. Any error aborts the run and no result is returned.
func Run(ctx context.Context, data []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	chunks := partition.Plan(data, opts.Workers)
	log.Debug("plan",
		zap.Int("bytes", len(data)),
		zap.Int("workers", len(chunks)),
		zap.Int("max_token", opts.MaxTokenLen),
	)

	parts := make([]Partial, len(chunks))
	scanStart := time.Now()
	err := opts.Scheduler.Run(ctx, len(chunks), func(_ context.Context, i int) error {
		parts[i] = scanChunk(data, chunks[i], opts.MaxTokenLen, opts.newTable)
		log.Debug("chunk scanned",
			zap.Int("chunk", i),
			zap.Int("start", chunks[i].Start),
			zap.Int("len", chunks[i].Len),
			zap.Int("words", parts[i].Words),
			zap.Int("lines", parts[i].Lines),
			zap.Int("unique", parts[i].Table.Len()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	scanTime := time.Since(scanStart)

	mergeStart := time.Now()
	global := opts.newTable()
	tot := Merge(global, parts)
	mergeTime := time.Since(mergeStart)

	log.Debug("merged",
		zap.Int("words", tot.Words),
		zap.Int("lines", tot.Lines),
		zap.Int("unique", global.Len()),
		zap.Duration("scan", scanTime),
		zap.Duration("merge", mergeTime),
	)

	return &Result{
		Table:     global,
		Words:     tot.Words,
		Lines:     tot.Lines,
		Chunks:    chunks,
		ScanTime:  scanTime,
		MergeTime: mergeTime,
	}, nil
}
