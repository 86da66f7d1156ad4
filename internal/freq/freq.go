// Package freq implements the word frequency table: a fixed-bucket hash map
// from word to occurrence count with chained collision resolution.
//
// A Table is not safe for concurrent use. The engine gives every worker its
// own table and merges them from a single goroutine.
package freq

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"wordfreq/internal/token"
)

// DefaultBuckets is the default bucket count. It is prime to reduce
// clustering of the multiplicative hash.
const DefaultBuckets = 10007

// Hasher maps a word to a 32-bit hash. The table reduces it modulo the
// bucket count.
type Hasher func(word []byte) uint32

// DJB2 is the default hasher: h = 5381, then h = h*33 + lower(b) per byte,
// with uint32 wraparound.
func DJB2(word []byte) uint32 {
	h := uint32(5381)
	for _, b := range word {
		h = (h << 5) + h + uint32(token.Lower(b))
	}
	return h
}

// XXH3 hashes with xxh3 and keeps the low 32 bits. It is not case-folding;
// callers insert already-lowercased words.
func XXH3(word []byte) uint32 {
	return uint32(xxh3.Hash(word))
}

// HasherByName resolves "djb2" (or "") and "xxh3".
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", "djb2":
		return DJB2, nil
	case "xxh3":
		return XXH3, nil
	default:
		return nil, fmt.Errorf("freq: unknown hasher %q (use djb2 or xxh3)", name)
	}
}

// Entry is one (word, count) pair.
type Entry struct {
	Word  string
	Count int
}

type node struct {
	word  string
	count int
	next  *node
}

// Table is a word -> count map with a fixed number of buckets.
type Table struct {
	buckets []*node
	hash    Hasher
	size    int
	total   int
}

// Option configures a Table.
type Option func(*Table)

// WithBuckets sets the bucket count. n < 1 keeps the default.
func WithBuckets(n int) Option {
	return func(t *Table) {
		if n >= 1 {
			t.buckets = make([]*node, n)
		}
	}
}

// WithHasher replaces the hash function. nil keeps DJB2.
func WithHasher(h Hasher) Option {
	return func(t *Table) {
		if h != nil {
			t.hash = h
		}
	}
}

// New returns an empty table.
func New(opts ...Option) *Table {
	t := &Table{hash: DJB2}
	for _, o := range opts {
		o(t)
	}
	if t.buckets == nil {
		t.buckets = make([]*node, DefaultBuckets)
	}
	return t
}

func (t *Table) index(word []byte) int {
	return int(t.hash(word) % uint32(len(t.buckets)))
}

// Insert increments the count of word by one, adding it with count 1 when
// absent. word is compared byte for byte and copied on insertion.
func (t *Table) Insert(word []byte) {
	t.Add(word, 1)
}

// Add increments the count of word by n. n <= 0 is a no-op.
func (t *Table) Add(word []byte, n int) {
	if n <= 0 {
		return
	}
	i := t.index(word)
	for nd := t.buckets[i]; nd != nil; nd = nd.next {
		if nd.word == string(word) {
			nd.count += n
			t.total += n
			return
		}
	}
	t.buckets[i] = &node{word: string(word), count: n, next: t.buckets[i]}
	t.size++
	t.total += n
}

// Count returns the count of word, 0 when absent.
func (t *Table) Count(word string) int {
	for nd := t.buckets[t.index([]byte(word))]; nd != nil; nd = nd.next {
		if nd.word == word {
			return nd.count
		}
	}
	return 0
}

// Len returns the number of distinct words.
func (t *Table) Len() int { return t.size }

// Total returns the sum of all counts.
func (t *Table) Total() int { return t.total }

// Buckets returns the bucket count.
func (t *Table) Buckets() int { return len(t.buckets) }

// Each calls fn for every entry in bucket order, most recently inserted
// first within a bucket, until fn returns false.
func (t *Table) Each(fn func(word string, count int) bool) {
	for _, head := range t.buckets {
		for nd := head; nd != nil; nd = nd.next {
			if !fn(nd.word, nd.count) {
				return
			}
		}
	}
}

// Entries returns a snapshot of all entries in Each order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, t.size)
	t.Each(func(w string, c int) bool {
		out = append(out, Entry{Word: w, Count: c})
		return true
	})
	return out
}

// Merge folds src into t: every word of src with count k adds k to t.
// src is not modified. The tables may use different bucket counts or
// hashers.
func (t *Table) Merge(src *Table) {
	if src == nil {
		return
	}
	for _, head := range src.buckets {
		for nd := head; nd != nil; nd = nd.next {
			t.Add([]byte(nd.word), nd.count)
		}
	}
}
