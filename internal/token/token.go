// Package token splits a byte range into lowercase, whitespace-delimited
// words while counting the newlines it passes.
//
// The delimiter set is ASCII whitespace as classified by C isspace: space,
// '\t', '\n', '\v', '\f' and '\r'. Everything else, punctuation included,
// belongs to a word. Case folding is ASCII only. Words longer than the
// scanner's maximum are truncated: excess bytes are consumed and dropped,
// and the word still counts once.
package token

// DefaultMaxLen is the default maximum token length in bytes.
const DefaultMaxLen = 99

// IsSpace reports whether b delimits words.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// Lower folds ASCII upper-case letters to lower case.
func Lower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Scanner is a single forward pass over one byte range. It is not safe for
// concurrent use and cannot be rewound.
type Scanner struct {
	data   []byte
	pos    int
	maxLen int
	buf    []byte
	lines  int
	words  int
}

// NewScanner returns a scanner over data. maxLen < 1 selects DefaultMaxLen.
func NewScanner(data []byte, maxLen int) *Scanner {
	if maxLen < 1 {
		maxLen = DefaultMaxLen
	}
	return &Scanner{
		data:   data,
		maxLen: maxLen,
		buf:    make([]byte, 0, min(maxLen, 64)),
	}
}

// Next returns the next token. The slice aliases the scanner's buffer and is
// only valid until the following call. ok is false once the range is
// exhausted; trailing newlines have been counted by then.
func (s *Scanner) Next() (tok []byte, ok bool) {
	data := s.data
	i := s.pos
	for i < len(data) && IsSpace(data[i]) {
		if data[i] == '\n' {
			s.lines++
		}
		i++
	}
	if i == len(data) {
		s.pos = i
		return nil, false
	}

	buf := s.buf[:0]
	for i < len(data) {
		c := data[i]
		if IsSpace(c) {
			break
		}
		if len(buf) < s.maxLen {
			buf = append(buf, Lower(c))
		}
		i++
	}
	s.pos = i
	s.buf = buf
	s.words++
	return buf, true
}

// Lines returns the number of newline bytes consumed so far.
func (s *Scanner) Lines() int { return s.lines }

// Words returns the number of tokens returned so far.
func (s *Scanner) Words() int { return s.words }
