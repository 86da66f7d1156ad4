// Package report writes the duplicate-word report: a "Duplicate Words:"
// header followed by one "<word>: <count> times" line per word that occurs
// more than once.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"wordfreq/internal/freq"
)

// Header is the first line of every report.
const Header = "Duplicate Words:"

// Order selects the line order of a report.
type Order string

const (
	// ByBucket keeps the table's iteration order.
	ByBucket Order = "bucket"
	// ByCount sorts by count descending, then word ascending.
	ByCount Order = "count"
	// ByWord sorts by word ascending.
	ByWord Order = "word"
)

// ParseOrder resolves an order name; "" is ByBucket.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case "":
		return ByBucket, nil
	case ByBucket, ByCount, ByWord:
		return o, nil
	default:
		return "", fmt.Errorf("report: unknown order %q (use bucket, count or word)", s)
	}
}

// Duplicates returns the entries of t with count > 1 in the given order.
func Duplicates(t *freq.Table, order Order) []freq.Entry {
	var out []freq.Entry
	t.Each(func(w string, c int) bool {
		if c > 1 {
			out = append(out, freq.Entry{Word: w, Count: c})
		}
		return true
	})
	switch order {
	case ByCount:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Count != out[j].Count {
				return out[i].Count > out[j].Count
			}
			return out[i].Word < out[j].Word
		})
	case ByWord:
		sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	}
	return out
}

// Write emits the report for t to w and returns the number of duplicate
// lines written.
func Write(w io.Writer, t *freq.Table, order Order) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return 0, err
	}
	dups := Duplicates(t, order)
	for _, e := range dups {
		if _, err := fmt.Fprintf(bw, "%s: %d times\n", e.Word, e.Count); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(dups), nil
}

// WriteFile writes the report to path, replacing any existing file.
func WriteFile(path string, t *freq.Table, order Order) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close report: %w", cerr))
		}
	}()

	n, err = Write(f, t, order)
	if err != nil {
		return n, fmt.Errorf("write report: %w", err)
	}
	return n, nil
}
