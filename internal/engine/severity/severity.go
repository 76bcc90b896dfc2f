package severity

import (
	"fmt"

	"github.com/crimson-sun/talepnlp/internal/engine/artifact"
	"github.com/crimson-sun/talepnlp/internal/engine/classifier"
	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
	"github.com/crimson-sun/talepnlp/internal/model"
)

// Classifier predicts the 0/1/2 severity of a message and derives the
// recommended action from it.
type Classifier struct {
	vec   *tfidf.Vectorizer
	model *classifier.Linear
}

// New pairs the severity model with the shared vectorizer.
func New(vec *tfidf.Vectorizer, m *classifier.Linear) (*Classifier, error) {
	for _, c := range m.Classes {
		if c < 0 || c > 2 {
			return nil, fmt.Errorf("severity: unexpected class %d", c)
		}
	}
	if err := artifact.CheckWidth(m.Features(), vec); err != nil {
		return nil, fmt.Errorf("severity: %w", err)
	}
	return &Classifier{vec: vec, model: m}, nil
}

// Predict returns the severity level with its action status and message.
func (c *Classifier) Predict(text string) (model.Severity, error) {
	level := c.model.Predict(c.vec.Transform(text))
	return model.SeverityFor(level), nil
}
