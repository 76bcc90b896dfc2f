// Package file appends prediction records to a CSV log.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/crimson-sun/talepnlp/internal/model"
	"github.com/crimson-sun/talepnlp/internal/output"
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// Output appends one CSV row per record. The header is written once when the
// file is created; an existing file must already carry it.
type Output struct {
	mu      sync.Mutex
	f       *os.File
	w       *csv.Writer
	path    string
	maxSize int64 // 0 = no rotation
	written int64
}

// New opens (or creates) the log at path, creating parent directories.
// An existing non-empty file whose header differs from model.Columns is
// rejected with output.ErrSchema.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{path: path}
	for _, opt := range opts {
		opt(o)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file output: %w", err)
	}
	if err := validate(path); err != nil {
		return nil, err
	}
	if err := o.openFile(); err != nil {
		return nil, err
	}
	return o, nil
}

// Write appends the record and flushes, so every prediction is on disk
// before the next prompt.
func (o *Output) Write(_ context.Context, rec model.Record) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.f == nil {
		if err := o.openFile(); err != nil {
			return err
		}
	}
	if o.maxSize > 0 && o.written >= o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}
	if err := o.w.Write(output.Row(rec)); err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return o.flush()
}

// Close flushes and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.f == nil {
		return nil
	}
	err := o.flush()
	if cerr := o.f.Close(); err == nil {
		err = cerr
	}
	o.f, o.w = nil, nil
	return err
}

func (o *Output) flush() error {
	o.w.Flush()
	if err := o.w.Error(); err != nil {
		return fmt.Errorf("file output: flush: %w", err)
	}
	info, err := o.f.Stat()
	if err != nil {
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.written = info.Size()
	return nil
}

// openFile opens the log for appending, writing the header if it is empty.
// o.f is only set once the file is ready.
func (o *Output) openFile() error {
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	w := csv.NewWriter(f)

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	size := info.Size()
	if size == 0 {
		w.Write(model.Columns)
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("file output: header: %w", err)
		}
		if info, err = f.Stat(); err != nil {
			f.Close()
			return fmt.Errorf("file output: stat %s: %w", o.path, err)
		}
		size = info.Size()
	}
	o.f, o.w, o.written = f, w, size
	return nil
}

// rotate closes the current log, renames it to {path}.1 (shifting existing
// rotated files up to {path}.10), and starts a new log with a fresh header.
// If a rename fails the current log is reopened and rotation is retried on
// the next write.
func (o *Output) rotate() error {
	o.w.Flush()
	err := o.f.Close()
	o.f, o.w = nil, nil
	if err != nil {
		return err
	}

	if err := o.shift(); err != nil {
		if oerr := o.openFile(); oerr != nil {
			return errors.Join(err, oerr)
		}
		return err
	}
	return o.openFile()
}

func (o *Output) shift() error {
	for i := 9; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", o.path, i)
		to := fmt.Sprintf("%s.%d", o.path, i+1)
		// Gaps in the numbering are expected.
		if err := os.Rename(from, to); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.Rename(o.path, o.path+".1")
}

// validate checks the header of an existing log. A missing or empty file is
// valid.
func validate(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file output: %w", err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file output: read header %s: %w", path, err)
	}
	if err := output.CheckHeader(header); err != nil {
		return fmt.Errorf("file output: %s: %w", path, err)
	}
	return nil
}

// ReadAll loads every record from the log at path, in file order.
func ReadAll(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file output: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("file output: read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := output.CheckHeader(rows[0]); err != nil {
		return nil, fmt.Errorf("file output: %s: %w", path, err)
	}

	recs := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := output.ParseRow(row)
		if err != nil {
			return nil, fmt.Errorf("file output: %s row %d: %w", path, i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
