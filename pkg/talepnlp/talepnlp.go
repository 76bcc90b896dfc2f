package talepnlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/talepnlp/internal/engine"
	"github.com/crimson-sun/talepnlp/internal/engine/loader"
)

// ErrUnavailable is reported for stages whose model did not load.
var ErrUnavailable = engine.ErrUnavailable

// Analyzer runs the five prediction stages. Safe for concurrent use.
type Analyzer struct {
	engine *engine.Engine
	bundle *loader.Bundle
}

// ArtifactStatus reports whether one stage's model loaded.
type ArtifactStatus struct {
	Stage     Stage  `json:"stage"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// New loads the models. This reads every artifact and starts the ONNX
// session; create once and reuse.
func New(opts ...Option) (*Analyzer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	b, err := loader.Load(context.Background(), resolvePaths(o), logger)
	if err != nil {
		return nil, fmt.Errorf("talepnlp: %w", err)
	}

	a := &Analyzer{
		engine: engine.New(b,
			engine.WithParallel(o.parallel),
			engine.WithCache(o.cacheSize),
			engine.WithLogger(logger),
		),
		bundle: b,
	}
	if err := a.checkRequired(o.required); err != nil {
		b.Close()
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) checkRequired(required []Stage) error {
	if len(required) == 0 {
		return nil
	}
	byStage := make(map[Stage]ArtifactStatus)
	for _, s := range a.Status() {
		byStage[s.Stage] = s
	}
	var errs []error
	for _, stage := range required {
		st, ok := byStage[stage]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown stage %q", stage))
			continue
		}
		if !st.Available {
			errs = append(errs, fmt.Errorf("%w: %s: %s", ErrUnavailable, stage, st.Error))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("talepnlp: %w", err)
	}
	return nil
}

// Predict analyses one message. Stages that fail are listed in
// Prediction.Errors; the rest are still filled in.
func (a *Analyzer) Predict(text string) Prediction {
	return predictionFromRecord(a.engine.Process(context.Background(), text))
}

// PredictBatch analyses several messages, in order.
func (a *Analyzer) PredictBatch(texts []string) []Prediction {
	recs, _ := a.engine.ProcessBatch(context.Background(), texts)
	out := make([]Prediction, len(recs))
	for i, r := range recs {
		out[i] = predictionFromRecord(r)
	}
	return out
}

// Status reports which models loaded.
func (a *Analyzer) Status() []ArtifactStatus {
	st := a.engine.Status()
	out := make([]ArtifactStatus, len(st))
	for i, s := range st {
		out[i] = ArtifactStatus{Stage: Stage(s.Name), Path: s.Path, Available: s.Available, Error: s.Error}
	}
	return out
}

// Close releases model resources (ONNX Runtime session).
func (a *Analyzer) Close() error {
	return a.bundle.Close()
}
