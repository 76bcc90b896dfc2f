// Package loader loads the model bundle: one slot per artifact, each holding
// either the ready predictor or the reason it is unavailable. A failure in
// one artifact never prevents the others from loading.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crimson-sun/talepnlp/internal/engine/artifact"
	"github.com/crimson-sun/talepnlp/internal/engine/entity"
	"github.com/crimson-sun/talepnlp/internal/engine/multilabel"
	"github.com/crimson-sun/talepnlp/internal/engine/sentiment"
	"github.com/crimson-sun/talepnlp/internal/engine/severity"
	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
	"github.com/crimson-sun/talepnlp/internal/engine/topic"
	"github.com/crimson-sun/talepnlp/internal/model"
)

// ErrUnavailable is returned when a stage's artifact failed to load.
var ErrUnavailable = errors.New("model unavailable")

var errNotLoaded = errors.New("not loaded")

// Slot holds a loaded value or the error that kept it from loading. The zero
// Slot is unavailable.
type Slot[T any] struct {
	value T
	path  string
	err   error
	ok    bool
}

// Ready returns a loaded slot.
func Ready[T any](v T, path string) Slot[T] { return Slot[T]{value: v, path: path, ok: true} }

// Failed returns a slot that could not be loaded.
func Failed[T any](path string, err error) Slot[T] { return Slot[T]{path: path, err: err} }

// Available reports whether the slot loaded.
func (s Slot[T]) Available() bool { return s.ok }

// Path is the artifact location the slot was loaded from, if any.
func (s Slot[T]) Path() string { return s.path }

// Err returns the load failure, or nil.
func (s Slot[T]) Err() error {
	if s.ok {
		return nil
	}
	if s.err == nil {
		return errNotLoaded
	}
	return s.err
}

// Get returns the value, or an error wrapping ErrUnavailable.
func (s Slot[T]) Get() (T, error) {
	if !s.ok {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrUnavailable, s.Err())
	}
	return s.value, nil
}

// Bundle is the set of predictors built from the artifacts. It is immutable
// after Load and safe for concurrent use.
type Bundle struct {
	Entity     Slot[*entity.Extractor]
	Topic      Slot[*topic.Classifier]
	Sentiment  Slot[*sentiment.Classifier]
	Severity   Slot[*severity.Classifier]
	Multilabel Slot[*multilabel.Classifier]
}

// Paths locates each artifact. An empty Lexicon selects the built-in
// entity vocabulary.
type Paths struct {
	Lexicon    string
	Topic      string
	Severity   string
	Multilabel string
	Sentiment  string // directory with model.onnx, vocab.txt, tokenizer_config.json

	ORTLibPath string
	Threads    int
}

// Default artifact names inside a model directory.
const (
	LexiconFile    = "entity_lexicon.yaml"
	TopicFile      = "konu_model.json"
	SeverityFile   = "severity_classifier.json"
	MultilabelFile = "multilabel/multilabelclassifier.json"
	SentimentDir   = "sentiment"
)

// PathsIn returns the default artifact layout rooted at dir.
func PathsIn(dir string) Paths {
	return Paths{
		Lexicon:    filepath.Join(dir, LexiconFile),
		Topic:      filepath.Join(dir, TopicFile),
		Severity:   filepath.Join(dir, SeverityFile),
		Multilabel: filepath.Join(dir, MultilabelFile),
		Sentiment:  filepath.Join(dir, SentimentDir),
	}
}

// Load builds every predictor it can. The only error it returns is ctx's.
func Load(ctx context.Context, p Paths, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bundle{}

	steps := []func(){
		func() { b.Entity = loadEntity(p.Lexicon, logger) },
		func() { b.Topic = loadTopic(p.Topic) },
		func() {
			var vec Slot[*tfidf.Vectorizer]
			b.Multilabel, vec = loadMultilabel(p.Multilabel)
			b.Severity = loadSeverity(p.Severity, vec)
		},
		func() { b.Sentiment = loadSentiment(p, logger) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			b.Close()
			return nil, err
		}
		step()
	}

	for _, st := range b.Status() {
		if st.Available {
			logger.Info("artifact loaded", "artifact", st.Name, "path", st.Path)
		} else {
			logger.Warn("artifact unavailable", "artifact", st.Name, "path", st.Path, "error", st.Error)
		}
	}
	return b, nil
}

func loadEntity(path string, logger *slog.Logger) Slot[*entity.Extractor] {
	lex := entity.DefaultLexicon()
	if path != "" {
		switch l, err := entity.LoadLexicon(path); {
		case err == nil:
			lex = l
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("entity lexicon not found, using built-in vocabulary", "path", path)
			path = ""
		default:
			return Failed[*entity.Extractor](path, err)
		}
	}
	ext, err := entity.New(lex)
	if err != nil {
		return Failed[*entity.Extractor](path, err)
	}
	logger.Debug("entity vocabulary", "entities", ext.Entities())
	return Ready(ext, path)
}

func loadTopic(path string) Slot[*topic.Classifier] {
	raw, err := artifact.Read(path)
	if err != nil {
		return Failed[*topic.Classifier](path, err)
	}
	p, err := artifact.DecodePipeline(raw)
	if err != nil {
		return Failed[*topic.Classifier](path, fmt.Errorf("topic: %w", err))
	}
	c, err := topic.New(p)
	if err != nil {
		return Failed[*topic.Classifier](path, err)
	}
	return Ready(c, path)
}

// loadMultilabel reads the (model, vectorizer) tuple. The vectorizer slot is
// returned separately because severity shares it.
func loadMultilabel(path string) (Slot[*multilabel.Classifier], Slot[*tfidf.Vectorizer]) {
	fail := func(err error) (Slot[*multilabel.Classifier], Slot[*tfidf.Vectorizer]) {
		return Failed[*multilabel.Classifier](path, err), Failed[*tfidf.Vectorizer](path, err)
	}

	raw, err := artifact.Read(path)
	if err != nil {
		return fail(err)
	}
	elems, isTuple, err := artifact.Unwrap(raw)
	if err != nil {
		return fail(fmt.Errorf("multilabel: %w", err))
	}
	if !isTuple || len(elems) < 2 {
		return fail(fmt.Errorf("multilabel: %w: want (model, vectorizer) tuple", artifact.ErrInvalid))
	}

	vec, err := artifact.DecodeVectorizer(elems[1])
	if err != nil {
		return fail(fmt.Errorf("multilabel vectorizer: %w", err))
	}
	vecSlot := Ready(vec, path)

	m, err := artifact.DecodeMultiOutput(elems[0])
	if err != nil {
		return Failed[*multilabel.Classifier](path, fmt.Errorf("multilabel: %w", err)), vecSlot
	}
	c, err := multilabel.New(vec, m)
	if err != nil {
		return Failed[*multilabel.Classifier](path, err), vecSlot
	}
	return Ready(c, path), vecSlot
}

// loadSeverity accepts either a bare model or a tuple whose first element is
// the model.
func loadSeverity(path string, vec Slot[*tfidf.Vectorizer]) Slot[*severity.Classifier] {
	raw, err := artifact.Read(path)
	if err != nil {
		return Failed[*severity.Classifier](path, err)
	}
	elems, _, err := artifact.Unwrap(raw)
	if err != nil {
		return Failed[*severity.Classifier](path, fmt.Errorf("severity: %w", err))
	}
	m, err := artifact.DecodeLinear(elems[0])
	if err != nil {
		return Failed[*severity.Classifier](path, fmt.Errorf("severity: %w", err))
	}
	shared, err := vec.Get()
	if err != nil {
		return Failed[*severity.Classifier](path, fmt.Errorf("severity: shared vectorizer unavailable: %v", vec.Err()))
	}
	c, err := severity.New(shared, m)
	if err != nil {
		return Failed[*severity.Classifier](path, err)
	}
	return Ready(c, path)
}

func loadSentiment(p Paths, logger *slog.Logger) Slot[*sentiment.Classifier] {
	if _, err := os.Stat(p.Sentiment); err != nil {
		return Failed[*sentiment.Classifier](p.Sentiment, fmt.Errorf("sentiment: %w", err))
	}
	enc, err := sentiment.Open(p.Sentiment, sentiment.Options{LibPath: p.ORTLibPath, Threads: p.Threads})
	if err != nil {
		return Failed[*sentiment.Classifier](p.Sentiment, err)
	}
	logger.Debug("sentiment encoder ready", "dir", p.Sentiment)
	return Ready(sentiment.New(enc), p.Sentiment)
}

// Status describes one artifact slot.
type Status struct {
	Name      model.Stage `json:"name"`
	Path      string      `json:"path,omitempty"`
	Available bool        `json:"available"`
	Error     string      `json:"error,omitempty"`
}

// Status reports per-artifact availability in stage order.
func (b *Bundle) Status() []Status {
	return []Status{
		status(model.StageEntity, b.Entity.Path(), b.Entity.Err()),
		status(model.StageTopic, b.Topic.Path(), b.Topic.Err()),
		status(model.StageSentiment, b.Sentiment.Path(), b.Sentiment.Err()),
		status(model.StageSeverity, b.Severity.Path(), b.Severity.Err()),
		status(model.StageMultilabel, b.Multilabel.Path(), b.Multilabel.Err()),
	}
}

func status(name model.Stage, path string, err error) Status {
	s := Status{Name: name, Path: path, Available: err == nil}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// Close releases the sentiment encoder. Safe to call on a partial bundle.
func (b *Bundle) Close() error {
	if c, err := b.Sentiment.Get(); err == nil && c != nil {
		return c.Close()
	}
	return nil
}
