package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
)

func vec(pairs ...float64) tfidf.Vector {
	var v tfidf.Vector
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func TestBinaryPredict(t *testing.T) {
	m := &Linear{
		Classes:   []int{0, 1},
		Coef:      [][]float64{{2, -1}},
		Intercept: []float64{-0.5},
	}
	require.NoError(t, m.Validate())

	assert.Equal(t, 1, m.Predict(vec(0, 1)))
	assert.Equal(t, 0, m.Predict(vec(1, 1)))
	assert.Equal(t, 0, m.Predict(tfidf.Vector{}), "empty vector falls back to intercept")
}

func TestMultiClassPredict(t *testing.T) {
	m := &Linear{
		Classes:   []int{0, 1, 2},
		Coef:      [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Intercept: []float64{0, 0, 0},
	}
	require.NoError(t, m.Validate())

	assert.Equal(t, 0, m.Predict(vec(0, 0.9)))
	assert.Equal(t, 1, m.Predict(vec(1, 0.9)))
	assert.Equal(t, 2, m.Predict(vec(0, 0.1, 2, 0.5)))
	assert.Equal(t, 0, m.Predict(tfidf.Vector{}), "ties resolve to the first class")
}

func TestPredictIsDeterministic(t *testing.T) {
	m := &Linear{
		Classes:   []int{3, 7, 9},
		Coef:      [][]float64{{0.2, 0.1}, {0.3, -0.4}, {-0.1, 0.5}},
		Intercept: []float64{0.1, 0, 0.05},
	}
	x := vec(0, 0.6, 1, 0.8)
	first := m.Predict(x)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Predict(x))
	}
}

func TestValidateRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name  string
		model Linear
	}{
		{"one class", Linear{Classes: []int{0}, Coef: [][]float64{{1}}, Intercept: []float64{0}}},
		{"missing rows", Linear{Classes: []int{0, 1, 2}, Coef: [][]float64{{1}}, Intercept: []float64{0}}},
		{"intercept mismatch", Linear{Classes: []int{0, 1}, Coef: [][]float64{{1}}, Intercept: []float64{}}},
		{"ragged", Linear{Classes: []int{0, 1, 2}, Coef: [][]float64{{1, 2}, {1}, {1, 2}}, Intercept: []float64{0, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.model.Validate())
		})
	}
}

func TestMultiOutputIndependentFlags(t *testing.T) {
	on := &Linear{Classes: []int{0, 1}, Coef: [][]float64{{1, 0}}, Intercept: []float64{-0.1}}
	off := &Linear{Classes: []int{0, 1}, Coef: [][]float64{{0, 1}}, Intercept: []float64{-0.1}}
	m := &MultiOutput{Estimators: []*Linear{on, off, on}}
	require.NoError(t, m.Validate())
	assert.Equal(t, 2, m.Features())

	assert.Equal(t, []int{1, 0, 1}, m.Predict(vec(0, 1)))
	assert.Equal(t, []int{0, 1, 0}, m.Predict(vec(1, 1)))
	assert.Equal(t, []int{1, 1, 1}, m.Predict(vec(0, 1, 1, 1)))
}

func TestMultiOutputRejectsWidthMismatch(t *testing.T) {
	a := &Linear{Classes: []int{0, 1}, Coef: [][]float64{{1, 0}}, Intercept: []float64{0}}
	b := &Linear{Classes: []int{0, 1}, Coef: [][]float64{{1}}, Intercept: []float64{0}}
	m := &MultiOutput{Estimators: []*Linear{a, b}}
	assert.Error(t, m.Validate())
	assert.Error(t, (&MultiOutput{}).Validate())
}
