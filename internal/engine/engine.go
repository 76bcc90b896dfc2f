// Package engine aggregates the five prediction stages into one record per
// input text.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/talepnlp/internal/engine/dedup"
	"github.com/crimson-sun/talepnlp/internal/engine/loader"
	"github.com/crimson-sun/talepnlp/internal/model"
)

// ErrUnavailable is wrapped by stage errors whose artifact did not load.
var ErrUnavailable = loader.ErrUnavailable

// Engine runs entity → konu → sentiment → severity → multilabel over a text.
type Engine struct {
	bundle    *loader.Bundle
	parallel  bool
	logger    *slog.Logger
	cacheSize int
	cache     *dedup.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel runs the stages of each input concurrently.
func WithParallel(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

// WithLogger sets the logger used for stage failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCache remembers up to size records keyed by input text. 0 disables it.
func WithCache(size int) Option {
	return func(e *Engine) { e.cacheSize = size }
}

// New creates an Engine over a loaded bundle.
func New(b *loader.Bundle, opts ...Option) *Engine {
	e := &Engine{bundle: b, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		// NewCache only fails for a non-positive size.
		e.cache, _ = dedup.NewCache(e.cacheSize)
	}
	return e
}

// Process predicts every stage for text. A stage that fails leaves its field
// at the zero value and records the reason in Record.Errors; Process itself
// never fails.
func (e *Engine) Process(ctx context.Context, text string) model.Record {
	if strings.TrimSpace(text) == "" {
		return EmptyRecord(text)
	}
	if e.cache != nil {
		if rec, ok := e.cache.Get(text); ok {
			return rec
		}
	}

	rec := e.process(ctx, text)
	if e.cache != nil {
		e.cache.Add(text, rec)
	}
	return rec
}

func (e *Engine) process(ctx context.Context, text string) model.Record {
	rec := model.Record{Text: text}
	stages := e.stages(text, &rec)
	errs := make([]error, len(stages))

	if e.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, s := range stages {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					errs[i] = err
					return nil
				}
				errs[i] = run(s.fn)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, s := range stages {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = run(s.fn)
		}
	}

	for i, err := range errs {
		if err == nil {
			continue
		}
		if rec.Errors == nil {
			rec.Errors = make(map[model.Stage]string)
		}
		rec.Errors[stages[i].name] = err.Error()
		e.logger.Debug("stage failed", "stage", stages[i].name, "error", err)
	}
	return rec
}

// ProcessBatch processes texts and returns records in input order. Repeated
// texts are predicted once. It fails only if ctx is done.
func (e *Engine) ProcessBatch(ctx context.Context, texts []string) ([]model.Record, error) {
	unique, index := dedup.Batch(texts)
	recs := make([]model.Record, 0, len(unique))
	for _, t := range unique {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs = append(recs, e.Process(ctx, t))
	}
	return dedup.Expand(recs, index), nil
}

// Status reports per-artifact availability.
func (e *Engine) Status() []loader.Status {
	return e.bundle.Status()
}

// EmptyRecord is the prediction for empty or whitespace-only input.
func EmptyRecord(text string) model.Record {
	return model.Record{
		Text:      text,
		Entity:    model.NoEntity,
		Topic:     model.DefaultTopic,
		Sentiment: model.Sentiment{Label: model.SentimentNeutral, Confidence: 1.0},
		Severity:  model.SeverityFor(0),
	}
}

type stage struct {
	name model.Stage
	fn   func() error
}

// stages binds each predictor to its field of rec. Every stage writes a
// distinct field, so they may run concurrently.
func (e *Engine) stages(text string, rec *model.Record) []stage {
	b := e.bundle
	return []stage{
		{model.StageEntity, func() error {
			rec.Entity = model.NoEntity
			ext, err := b.Entity.Get()
			if err != nil {
				return err
			}
			rec.Entity, err = ext.Extract(text)
			return err
		}},
		{model.StageTopic, func() error {
			c, err := b.Topic.Get()
			if err != nil {
				return err
			}
			rec.Topic, err = c.Predict(text)
			return err
		}},
		{model.StageSentiment, func() error {
			c, err := b.Sentiment.Get()
			if err != nil {
				return err
			}
			rec.Sentiment, err = c.Predict(text)
			return err
		}},
		{model.StageSeverity, func() error {
			c, err := b.Severity.Get()
			if err != nil {
				return err
			}
			rec.Severity, err = c.Predict(text)
			return err
		}},
		{model.StageMultilabel, func() error {
			c, err := b.Multilabel.Get()
			if err != nil {
				return err
			}
			rec.Multilabel, err = c.Predict(text)
			return err
		}},
	}
}

// run calls fn, converting a panic into an error.
func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
