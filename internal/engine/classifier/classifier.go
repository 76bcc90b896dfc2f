package classifier

import (
	"errors"
	"fmt"

	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
)

// Linear is a fitted linear classifier (logistic regression, linear SVM,
// ridge) scored against sparse TF-IDF vectors.
type Linear struct {
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`      // [n_rows][n_features]
	Intercept []float64   `json:"intercept"` // [n_rows]
}

// Validate checks the model's shape. A binary model carries one coefficient
// row; a multi-class model carries one row per class.
func (m *Linear) Validate() error {
	if len(m.Classes) < 2 {
		return fmt.Errorf("classifier: need at least 2 classes, got %d", len(m.Classes))
	}
	rows := len(m.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(m.Coef) != rows {
		return fmt.Errorf("classifier: %d classes need %d coef rows, got %d", len(m.Classes), rows, len(m.Coef))
	}
	if len(m.Intercept) != rows {
		return fmt.Errorf("classifier: expected %d intercepts, got %d", rows, len(m.Intercept))
	}
	width := len(m.Coef[0])
	if width == 0 {
		return errors.New("classifier: empty coefficient row")
	}
	for i, row := range m.Coef {
		if len(row) != width {
			return fmt.Errorf("classifier: coef row %d has %d features, want %d", i, len(row), width)
		}
	}
	return nil
}

// Features returns the input dimensionality the model expects.
func (m *Linear) Features() int {
	if len(m.Coef) == 0 {
		return 0
	}
	return len(m.Coef[0])
}

// Decision returns the raw decision function, one score per coefficient row.
func (m *Linear) Decision(x tfidf.Vector) []float64 {
	scores := make([]float64, len(m.Coef))
	for r, row := range m.Coef {
		sum := m.Intercept[r]
		for i, idx := range x.Indices {
			if idx < len(row) {
				sum += row[idx] * x.Values[i]
			}
		}
		scores[r] = sum
	}
	return scores
}

// Predict returns the predicted class. Ties resolve to the lowest row.
func (m *Linear) Predict(x tfidf.Vector) int {
	scores := m.Decision(x)
	if len(scores) == 1 {
		if scores[0] > 0 {
			return m.Classes[1]
		}
		return m.Classes[0]
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return m.Classes[best]
}

// MultiOutput wraps one independent binary estimator per output label.
type MultiOutput struct {
	Estimators []*Linear `json:"estimators"`
}

// Validate checks every estimator and that all share one feature width.
func (m *MultiOutput) Validate() error {
	if len(m.Estimators) == 0 {
		return errors.New("classifier: multi-output model has no estimators")
	}
	for i, est := range m.Estimators {
		if est == nil {
			return fmt.Errorf("classifier: estimator %d is null", i)
		}
		if err := est.Validate(); err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
		if est.Features() != m.Estimators[0].Features() {
			return fmt.Errorf("classifier: estimator %d has %d features, want %d",
				i, est.Features(), m.Estimators[0].Features())
		}
	}
	return nil
}

// Features returns the shared input dimensionality.
func (m *MultiOutput) Features() int {
	if len(m.Estimators) == 0 {
		return 0
	}
	return m.Estimators[0].Features()
}

// Predict returns one prediction per estimator, in estimator order.
func (m *MultiOutput) Predict(x tfidf.Vector) []int {
	out := make([]int, len(m.Estimators))
	for i, est := range m.Estimators {
		out[i] = est.Predict(x)
	}
	return out
}
