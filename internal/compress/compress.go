// Package compress writes gzip copies of files.
package compress

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

const copyBufSize = 64 << 10

// Stats reports the bytes read from the source and written to the
// destination.
type Stats struct {
	In  int64
	Out int64
}

// Ratio returns Out/In, or 0 for an empty source.
func (s Stats) Ratio() float64 {
	if s.In == 0 {
		return 0
	}
	return float64(s.Out) / float64(s.In)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// GzipFile compresses src into dst, replacing dst. level is a gzip level
// (gzip.StatelessCompression, gzip.HuffmanOnly, gzip.DefaultCompression,
// or 0..9). The member header carries the source's base name.
func GzipFile(src, dst string, level int) (st Stats, err error) {
	in, err := os.Open(src)
	if err != nil {
		return st, fmt.Errorf("open gzip source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return st, fmt.Errorf("create gzip destination: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close gzip destination: %w", cerr))
		}
	}()

	cw := &countingWriter{w: out}
	bw := bufio.NewWriterSize(cw, copyBufSize)
	zw, err := gzip.NewWriterLevel(bw, level)
	if err != nil {
		return st, fmt.Errorf("gzip level %d: %w", level, err)
	}
	zw.Name = filepath.Base(src)

	st.In, err = io.CopyBuffer(zw, in, make([]byte, copyBufSize))
	if err != nil {
		return st, fmt.Errorf("compress %s: %w", src, err)
	}
	if err := zw.Close(); err != nil {
		return st, fmt.Errorf("finish gzip stream: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return st, fmt.Errorf("write gzip destination: %w", err)
	}
	st.Out = cw.n
	return st, nil
}
