// Package pipeline drives the engine from an interactive prompt, a single
// text, or a file of texts, and sends each record to the display and the log.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/crimson-sun/talepnlp/internal/model"
	"github.com/crimson-sun/talepnlp/internal/output"
)

// Prompt is printed before every REPL read.
const Prompt = "Enter text (type 'q' to quit): "

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Processor produces prediction records. *engine.Engine satisfies it.
type Processor interface {
	Process(ctx context.Context, text string) model.Record
	ProcessBatch(ctx context.Context, texts []string) ([]model.Record, error)
}

// Pipeline connects a processor to a display and a persistent log.
type Pipeline struct {
	proc    Processor
	display output.Output
	log     output.Output
}

// New creates a Pipeline. display or log may be nil.
func New(proc Processor, display, log output.Output) *Pipeline {
	return &Pipeline{proc: proc, display: display, log: log}
}

// Run is the interactive loop: prompt, read a line, stop on "q" (any case)
// or end of input, predict, display, persist. Errors inside an iteration
// are printed and the loop continues.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, Prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.EqualFold(text, "q") {
			return nil
		}

		rec := p.proc.Process(ctx, text)
		if err := p.emit(ctx, rec); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			slog.Warn("prediction not saved", "error", err)
			continue
		}
		if p.log != nil {
			fmt.Fprintln(out, "Prediction results saved.")
		}
	}
}

// Once predicts a single text and emits it.
func (p *Pipeline) Once(ctx context.Context, text string) (model.Record, error) {
	rec := p.proc.Process(ctx, text)
	return rec, p.emit(ctx, rec)
}

// Batch predicts one text per non-empty line of r and emits the records in
// input order. It returns the number of records emitted.
func (p *Pipeline) Batch(ctx context.Context, r io.Reader) (int, error) {
	var texts []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("pipeline batch: %w", err)
	}

	recs, err := p.proc.ProcessBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("pipeline batch: %w", err)
	}
	for i, rec := range recs {
		if err := p.emit(ctx, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// emit shows rec and then persists it. A display failure does not prevent
// the log write.
func (p *Pipeline) emit(ctx context.Context, rec model.Record) error {
	var displayErr error
	if p.display != nil {
		displayErr = p.display.Write(ctx, rec)
	}
	if p.log != nil {
		if err := p.log.Write(ctx, rec); err != nil {
			return fmt.Errorf("pipeline output: %w", err)
		}
	}
	if displayErr != nil {
		return fmt.Errorf("pipeline display: %w", displayErr)
	}
	return nil
}

// Close shuts down the display and the log.
func (p *Pipeline) Close() error {
	var firstErr error
	for _, o := range []output.Output{p.display, p.log} {
		if o == nil {
			continue
		}
		if err := o.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
