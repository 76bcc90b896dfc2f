package output

import (
	"context"
	"errors"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// ErrSchema is returned when an existing log does not carry the expected
// columns.
var ErrSchema = errors.New("log schema mismatch")

// Output defines the interface for prediction record destinations.
type Output interface {
	Write(ctx context.Context, rec model.Record) error
	Close() error
}
