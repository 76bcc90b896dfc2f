package multilabel

import (
	"fmt"

	"github.com/crimson-sun/talepnlp/internal/engine/artifact"
	"github.com/crimson-sun/talepnlp/internal/engine/classifier"
	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
	"github.com/crimson-sun/talepnlp/internal/model"
)

// Classifier predicts seven independent category flags.
type Classifier struct {
	vec   *tfidf.Vectorizer
	model *classifier.MultiOutput
}

// New checks that the model has one binary estimator per schema field.
func New(vec *tfidf.Vectorizer, m *classifier.MultiOutput) (*Classifier, error) {
	if len(m.Estimators) != len(model.MultilabelSchema) {
		return nil, fmt.Errorf("multilabel: model has %d outputs, schema has %d",
			len(m.Estimators), len(model.MultilabelSchema))
	}
	for i, est := range m.Estimators {
		if len(est.Classes) != 2 || est.Classes[0] != 0 || est.Classes[1] != 1 {
			return nil, fmt.Errorf("multilabel: output %q is not binary 0/1: %v",
				model.MultilabelSchema[i].Column, est.Classes)
		}
	}
	if err := artifact.CheckWidth(m.Features(), vec); err != nil {
		return nil, fmt.Errorf("multilabel: %w", err)
	}
	return &Classifier{vec: vec, model: m}, nil
}

// Predict returns the flags, unpacked positionally through
// model.MultilabelSchema.
func (c *Classifier) Predict(text string) (model.Multilabel, error) {
	preds := c.model.Predict(c.vec.Transform(text))
	var out model.Multilabel
	for i, field := range model.MultilabelSchema {
		field.Set(&out, preds[i])
	}
	return out, nil
}
