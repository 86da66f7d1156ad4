// Package partition divides an in-memory buffer into contiguous chunks whose
// boundaries never fall inside a word.
package partition

import "wordfreq/internal/token"

// Chunk is a half-open byte range [Start, Start+Len) of the input buffer.
type Chunk struct {
	Index int
	Start int
	Len   int
}

// End returns the exclusive end offset.
func (c Chunk) End() int { return c.Start + c.Len }

// Bytes returns the chunk's slice of data.
func (c Chunk) Bytes(data []byte) []byte { return data[c.Start:c.End()] }

// Naive splits length into n ranges at i*(length/n); the last range takes
// the remainder. Boundaries may fall inside words.
func Naive(length, n int) []Chunk {
	if n < 1 {
		n = 1
	}
	size := length / n
	out := make([]Chunk, n)
	for i := range out {
		start := i * size
		end := start + size
		if i == n-1 {
			end = length
		}
		out[i] = Chunk{Index: i, Start: start, Len: end - start}
	}
	return out
}

// Plan returns exactly n chunks covering data with no gaps or overlaps. The
// first starts at 0. Every later boundary starts at its naive offset (or the
// previous boundary, whichever is larger) and moves forward until it touches
// whitespace or reaches the end of data, growing the previous chunk. Chunks
// may be empty. n < 1 is treated as 1.
func Plan(data []byte, n int) []Chunk {
	naive := Naive(len(data), n)
	bounds := make([]int, len(naive)+1)
	bounds[len(naive)] = len(data)
	for i := 1; i < len(naive); i++ {
		b := naive[i].Start
		if b < bounds[i-1] {
			b = bounds[i-1]
		}
		for b < len(data) && !atBoundary(data, b) {
			b++
		}
		bounds[i] = b
	}

	out := naive[:0]
	for i := 0; i < len(bounds)-1; i++ {
		out = append(out, Chunk{Index: i, Start: bounds[i], Len: bounds[i+1] - bounds[i]})
	}
	return out
}

// atBoundary reports whether splitting before data[b] keeps every word whole.
func atBoundary(data []byte, b int) bool {
	return b == 0 || token.IsSpace(data[b-1]) || token.IsSpace(data[b])
}
