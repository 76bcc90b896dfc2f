package talepnlp

import (
	"log/slog"

	"github.com/crimson-sun/talepnlp/internal/engine/loader"
)

type options struct {
	modelDir   string
	paths      *loader.Paths
	ortLibPath string
	threads    int
	parallel   bool
	cacheSize  int
	required   []Stage
	logger     *slog.Logger
}

// Option configures an Analyzer.
type Option func(*options)

// WithModelDir sets the directory holding the model exports.
// Expects: entity_lexicon.yaml, konu_model.json, severity_classifier.json,
// multilabel/multilabelclassifier.json, sentiment/.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithModelPaths sets an explicit location for each artifact. Empty fields
// fall back to the model directory layout.
func WithModelPaths(lexicon, topic, severity, multilabel, sentimentDir string) Option {
	return func(o *options) {
		o.paths = &loader.Paths{
			Lexicon:    lexicon,
			Topic:      topic,
			Severity:   severity,
			Multilabel: multilabel,
			Sentiment:  sentimentDir,
		}
	}
}

// WithONNXRuntime sets the ONNX Runtime shared library and intra-op thread
// count for the sentiment model. threads 0 keeps the runtime default.
func WithONNXRuntime(libPath string, threads int) Option {
	return func(o *options) {
		o.ortLibPath = libPath
		o.threads = threads
	}
}

// WithParallel runs the five stages of each prediction concurrently.
func WithParallel(on bool) Option {
	return func(o *options) {
		o.parallel = on
	}
}

// WithCache remembers up to size predictions keyed by message text, so
// repeated messages skip inference. Predictions with stage errors are not
// cached.
func WithCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithRequired makes New fail unless the given stages load.
func WithRequired(stages ...Stage) Option {
	return func(o *options) {
		o.required = append(o.required, stages...)
	}
}

// WithLogger sets the logger for load and stage diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{modelDir: "data/models"}
}

// resolvePaths applies explicit paths over the model directory layout.
func resolvePaths(o options) loader.Paths {
	p := loader.PathsIn(o.modelDir)
	if o.paths != nil {
		for dst, src := range map[*string]string{
			&p.Lexicon:    o.paths.Lexicon,
			&p.Topic:      o.paths.Topic,
			&p.Severity:   o.paths.Severity,
			&p.Multilabel: o.paths.Multilabel,
			&p.Sentiment:  o.paths.Sentiment,
		} {
			if src != "" {
				*dst = src
			}
		}
	}
	p.ORTLibPath = o.ortLibPath
	p.Threads = o.threads
	return p
}
