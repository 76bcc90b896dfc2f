package topic

import (
	"fmt"

	"github.com/crimson-sun/talepnlp/internal/engine/artifact"
	"github.com/crimson-sun/talepnlp/internal/model"
)

// Classifier assigns one of the konu labels to free text.
type Classifier struct {
	pipeline *artifact.Pipeline
	labels   []string
}

// New wraps a fitted pipeline. Every class the model can emit must index
// into model.TopicLabels.
func New(p *artifact.Pipeline) (*Classifier, error) {
	for _, c := range p.Classifier.Classes {
		if c < 0 || c >= len(model.TopicLabels) {
			return nil, fmt.Errorf("topic: class %d outside label table of %d", c, len(model.TopicLabels))
		}
	}
	return &Classifier{pipeline: p, labels: model.TopicLabels}, nil
}

// Predict returns the topic label for text.
func (c *Classifier) Predict(text string) (string, error) {
	idx := c.pipeline.Classifier.Predict(c.pipeline.Vectorizer.Transform(text))
	if idx < 0 || idx >= len(c.labels) {
		return "", fmt.Errorf("topic: predicted index %d out of range", idx)
	}
	return c.labels[idx], nil
}
