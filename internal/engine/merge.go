package engine

import "wordfreq/internal/freq"

// Totals are the run-wide counters.
type Totals struct {
	Words int
	Lines int
}

// Merge folds every partial into global and sums the counters. It must run
// after the scheduler's barrier; global is owned by the caller, so no lock
// is taken. Each partial's table is dropped once merged.
func Merge(global *freq.Table, parts []Partial) Totals {
	var tot Totals
	for i := range parts {
		global.Merge(parts[i].Table)
		tot.Words += parts[i].Words
		tot.Lines += parts[i].Lines
		parts[i].Table = nil
	}
	return tot
}
