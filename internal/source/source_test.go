package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"small", "the cat\nsat\n"},
		{"large", strings.Repeat("lorem ipsum dolor\n", 20000)},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name+".txt")
		if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", tt.name, err)
		}
		if string(got) != tt.body {
			t.Fatalf("ReadFile(%s) returned %d bytes, want %d", tt.name, len(got), len(tt.body))
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("ReadFile(absent) error = nil, want error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist", err)
	}
	if !strings.HasPrefix(err.Error(), "open input:") {
		t.Fatalf("error = %q, want it to name the open operation", err)
	}
}

func TestReadFileDirectory(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile(t.TempDir()); err == nil {
		t.Fatal("ReadFile(dir) error = nil, want read error")
	}
}
