package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/talepnlp/internal/model"
	"github.com/crimson-sun/talepnlp/internal/output"
)

// Multi fans out records to several outputs, e.g. the console summary and
// the CSV log. A failing output does not stop delivery to the others.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over outputs, skipping nil entries.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len returns the number of wrapped outputs.
func (m *Multi) Len() int { return len(m.outputs) }

// Write delivers rec to every output and joins their errors.
func (m *Multi) Write(ctx context.Context, rec model.Record) error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Write(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
