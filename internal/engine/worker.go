package engine

import (
	"wordfreq/internal/freq"
	"wordfreq/internal/partition"
	"wordfreq/internal/token"
)

// Partial is one worker's private result. Table is owned by the worker until
// the scheduler returns, then by the merger.
type Partial struct {
	Chunk partition.Chunk
	Table *freq.Table
	Words int
	Lines int
}

// scanChunk tokenizes exactly one chunk into a fresh table. It reads data and
// writes nothing shared.
func scanChunk(data []byte, c partition.Chunk, maxLen int, newTable func() *freq.Table) Partial {
	tbl := newTable()
	s := token.NewScanner(c.Bytes(data), maxLen)
	for {
		tok, ok := s.Next()
		if !ok {
			break
		}
		tbl.Insert(tok)
	}
	return Partial{Chunk: c, Table: tbl, Words: s.Words(), Lines: s.Lines()}
}

// Count is the single-pass reference: it tokenizes all of data on the calling
// goroutine without building a table.
func Count(data []byte, maxLen int) (words, lines int) {
	s := token.NewScanner(data, maxLen)
	for {
		if _, ok := s.Next(); !ok {
			return s.Words(), s.Lines()
		}
	}
}
