package tabular

import (
	"encoding/csv"
	"fmt"

	billy "github.com/go-git/go-billy/v5"
)

// Writer emits CSV rows in the exact order they are written. It always uses
// comma separation, LF line endings and minimal quoting, so a given row
// sequence serializes to the same bytes on every run — the bulk loader
// diff-ability guarantee rests on this.
type Writer struct {
	f    billy.File
	w    *csv.Writer
	path string
}

// NewWriter creates (truncating) path on fs and writes the header row.
func NewWriter(fs billy.Filesystem, path string, header []string) (*Writer, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close() // ignore error
		return nil, fmt.Errorf("write header of %s: %w", path, err)
	}

	return &Writer{f: f, w: w, path: path}, nil
}

// Write appends one row.
func (w *Writer) Write(rec []string) error {
	if err := w.w.Write(rec); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}

// Close flushes buffered rows and closes the file. A flush error means the
// output is incomplete and the whole run must be treated as failed.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		_ = w.f.Close() // ignore error
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}
