// Package tabular provides chunked streaming over delimited text files.
//
// The raw PrimeKG tables run to tens of millions of rows; ChunkReader keeps
// at most one chunk of rows in memory at a time (produce a batch, hand it
// out, release it) so peak memory stays proportional to the chunk size, not
// the file. All file access goes through a billy.Filesystem so tests can run
// entirely on memfs.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	billy "github.com/go-git/go-billy/v5"
)

// DefaultChunkSize bounds how many rows a single chunk may hold.
const DefaultChunkSize = 1_000_000

// ChunkReader streams a delimited file with a single header row as a finite
// sequence of bounded row batches. The header is read and verified on open;
// every subsequent row must have the same field count (a mismatch is a
// structural error and aborts the read with the offending line number).
type ChunkReader struct {
	f    billy.File
	r    *csv.Reader
	path string
	size int
	cols map[string]int
}

// OpenChunkReader opens path on fs and reads its header row. Every column
// named in required must be present, otherwise the open fails — a missing
// column means the file does not have the expected shape at all.
func OpenChunkReader(fs billy.Filesystem, path string, comma rune, chunkSize int, required []string) (*ChunkReader, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.Comma = comma

	header, err := r.Read()
	if err != nil {
		_ = f.Close() // ignore error
		if err == io.EOF {
			return nil, fmt.Errorf("read header of %s: file is empty", path)
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			_ = f.Close() // ignore error
			return nil, fmt.Errorf("%s: missing required column %q (header: %s)",
				path, name, strings.Join(header, ", "))
		}
	}

	return &ChunkReader{
		f:    f,
		r:    r,
		path: path,
		size: chunkSize,
		cols: cols,
	}, nil
}

// Col returns the index of a header column. Callers resolve indices once
// before the row loop; asking for a column that was not in the required set
// at open time is a programming error and panics.
func (cr *ChunkReader) Col(name string) int {
	i, ok := cr.cols[name]
	if !ok {
		panic(fmt.Sprintf("tabular: column %q not present in %s", name, cr.path))
	}
	return i
}

// Lookup returns the index of an optional column, reporting whether the
// header carries it at all.
func (cr *ChunkReader) Lookup(name string) (int, bool) {
	i, ok := cr.cols[name]
	return i, ok
}

// Next reads up to one chunk of rows. It returns io.EOF once the file is
// exhausted. Any other error is structural (wrong field count, bad quoting)
// or I/O and must abort the run; the wrapped csv.ParseError carries the
// offending line number.
func (cr *ChunkReader) Next() ([][]string, error) {
	capHint := cr.size
	if capHint > 4096 {
		capHint = 4096 // grow on demand, a huge chunk size must not preallocate
	}
	chunk := make([][]string, 0, capHint)
	for len(chunk) < cr.size {
		rec, err := cr.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cr.path, err)
		}
		chunk = append(chunk, rec)
	}
	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

// Close releases the underlying file.
func (cr *ChunkReader) Close() error {
	return cr.f.Close()
}
