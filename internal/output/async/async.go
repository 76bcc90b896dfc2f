package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/talepnlp/internal/model"
	"github.com/crimson-sun/talepnlp/internal/output"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async output closed")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the queue capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the record) when
// the queue is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async serialises writes from many goroutines (HTTP handlers) into a single
// writer goroutine that owns the inner output.
type Async struct {
	inner      output.Output
	ch         chan model.Record
	done       chan struct{}
	errFunc    func(error)
	bufSize    int
	dropOnFull bool

	mu     sync.RWMutex // guards closed against sends on ch
	closed bool
}

// New wraps inner and starts the writer goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Record, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues rec. It blocks while the queue is full unless ctx is done or
// WithDropOnFull is set.
func (a *Async) Write(ctx context.Context, rec model.Record) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	if a.dropOnFull {
		select {
		case a.ch <- rec:
		default:
			slog.Warn("async output queue full, dropping record", "text_len", len(rec.Text))
		}
		return nil
	}
	select {
	case a.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting records, waits for the queue to drain (with a
// timeout), then closes the inner output. Safe to call more than once.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(defaultDrainTimeout):
		slog.Warn("async output drain timed out")
	}
	return a.inner.Close()
}

func (a *Async) drain() {
	defer close(a.done)
	for rec := range a.ch {
		if err := a.inner.Write(context.Background(), rec); err != nil {
			a.errFunc(err)
		}
	}
}
