package partition

import (
	"math/rand"
	"strings"
	"testing"

	"wordfreq/internal/token"
)

// checkCover fails unless chunks tile data exactly.
func checkCover(t *testing.T, data []byte, n int, chunks []Chunk) {
	t.Helper()

	want := n
	if want < 1 {
		want = 1
	}
	if len(chunks) != want {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), want)
	}
	pos := 0
	sum := 0
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk[%d].Index = %d", i, c.Index)
		}
		if c.Start != pos {
			t.Fatalf("chunk[%d].Start = %d, want %d (gap or overlap)", i, c.Start, pos)
		}
		if c.Len < 0 {
			t.Fatalf("chunk[%d].Len = %d", i, c.Len)
		}
		pos = c.End()
		sum += c.Len
	}
	if pos != len(data) || sum != len(data) {
		t.Fatalf("chunks cover %d bytes (sum %d), want %d", pos, sum, len(data))
	}
}

func words(b []byte) []string {
	var out []string
	s := token.NewScanner(b, 1<<20)
	for {
		tok, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, string(tok))
	}
}

func TestPlanMidWordSplit(t *testing.T) {
	t.Parallel()

	data := []byte("aaaa bbbb")
	naive := Naive(len(data), 2)
	if got := string(naive[0].Bytes(data)); got != "aaaa" {
		t.Fatalf("naive chunk[0] = %q, want %q", got, "aaaa")
	}
	if got := string(naive[1].Bytes(data)); got != " bbbb" {
		t.Fatalf("naive chunk[1] = %q, want %q", got, " bbbb")
	}

	// A midpoint inside the first word is moved to the next whitespace.
	data = []byte("aaaaaaa bbbb")
	naive = Naive(len(data), 2)
	if got := string(naive[0].Bytes(data)); got != "aaaaaa" {
		t.Fatalf("naive chunk[0] = %q, want a fragment", got)
	}
	chunks := Plan(data, 2)
	checkCover(t, data, 2, chunks)
	if got := words(chunks[0].Bytes(data)); strings.Join(got, ",") != "aaaaaaa" {
		t.Fatalf("chunk[0] words = %q, want [aaaaaaa]", got)
	}
	if got := words(chunks[1].Bytes(data)); strings.Join(got, ",") != "bbbb" {
		t.Fatalf("chunk[1] words = %q, want [bbbb]", got)
	}
}

func TestPlanEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
	}{
		{"empty data", "", 4},
		{"zero workers", "abc def", 0},
		{"negative workers", "abc def", -3},
		{"more workers than bytes", "ab c", 9},
		{"single long word", strings.Repeat("x", 50), 5},
		{"all whitespace", "\n\n \t\n", 3},
		{"one worker", "one two three", 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := []byte(tt.in)
			chunks := Plan(data, tt.n)
			checkCover(t, data, tt.n, chunks)

			var got []string
			for _, c := range chunks {
				got = append(got, words(c.Bytes(data))...)
			}
			if strings.Join(got, " ") != strings.Join(words(data), " ") {
				t.Fatalf("words across chunks = %q, want %q", got, words(data))
			}
		})
	}
}

func TestPlanSingleLongWordGoesToFirstChunk(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("x", 50))
	chunks := Plan(data, 5)
	if chunks[0].Len != 50 {
		t.Fatalf("chunk[0].Len = %d, want 50", chunks[0].Len)
	}
	for _, c := range chunks[1:] {
		if c.Len != 0 {
			t.Fatalf("chunk[%d].Len = %d, want 0", c.Index, c.Len)
		}
	}
}

// TestPlanNeverSplitsWords checks on random inputs that the concatenation of
// per-chunk tokens equals the whole-buffer token stream for many n.
func TestPlanNeverSplitsWords(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("abcXYZ.,  \n\t")
	for iter := 0; iter < 200; iter++ {
		data := make([]byte, rng.Intn(300))
		for i := range data {
			data[i] = alphabet[rng.Intn(len(alphabet))]
		}
		want := strings.Join(words(data), " ")
		for n := 1; n <= 12; n++ {
			chunks := Plan(data, n)
			checkCover(t, data, n, chunks)

			var got []string
			for _, c := range chunks {
				if c.Start > 0 && c.Start < len(data) && !atBoundary(data, c.Start) {
					t.Fatalf("chunk[%d] starts inside a word at %d", c.Index, c.Start)
				}
				got = append(got, words(c.Bytes(data))...)
			}
			if strings.Join(got, " ") != want {
				t.Fatalf("n=%d: tokens %q, want %q", n, got, want)
			}
		}
	}
}

func TestNaiveRemainder(t *testing.T) {
	t.Parallel()

	chunks := Naive(10, 3)
	lens := []int{chunks[0].Len, chunks[1].Len, chunks[2].Len}
	if lens[0] != 3 || lens[1] != 3 || lens[2] != 4 {
		t.Fatalf("Naive(10, 3) lens = %v, want [3 3 4]", lens)
	}
}
