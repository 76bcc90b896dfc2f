package sentiment

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/talepnlp/internal/model"
)

type stubEncoder struct {
	logits []float32
	err    error
	closed bool
}

func (s *stubEncoder) Logits(string) ([]float32, error) { return s.logits, s.err }
func (s *stubEncoder) Close() error                    { s.closed = true; return nil }

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3})
	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[2], probs[1])
	assert.Greater(t, probs[1], probs[0])
}

func TestSoftmaxLargeLogitsStable(t *testing.T) {
	probs := Softmax([]float32{1000, 1000, 1000})
	for _, p := range probs {
		assert.False(t, math.IsNaN(p))
		assert.InDelta(t, 1.0/3, p, 1e-9)
	}
}

func TestFromLogitsNonSequentialMapping(t *testing.T) {
	tests := []struct {
		logits []float32
		want   string
	}{
		{[]float32{5, 0, 0}, model.SentimentNeutral},
		{[]float32{0, 5, 0}, model.SentimentPositive},
		{[]float32{0, 0, 5}, model.SentimentNegative},
	}
	for _, tt := range tests {
		got, err := FromLogits(tt.logits)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Label)
		assert.Greater(t, got.Confidence, 0.9)
		assert.LessOrEqual(t, got.Confidence, 1.0)
	}
}

func TestFromLogitsConfidenceIsArgmaxProbability(t *testing.T) {
	logits := []float32{0.2, 1.3, -0.7}
	got, err := FromLogits(logits)
	require.NoError(t, err)
	assert.Equal(t, model.SentimentPositive, got.Label)
	assert.InDelta(t, Softmax(logits)[1], got.Confidence, 1e-12)
}

func TestFromLogitsWrongWidth(t *testing.T) {
	_, err := FromLogits([]float32{1, 2})
	assert.Error(t, err)
}

func TestClassifierPredict(t *testing.T) {
	enc := &stubEncoder{logits: []float32{0, 0, 3}}
	c := New(enc)

	got, err := c.Predict("hic memnun degilim")
	require.NoError(t, err)
	assert.Equal(t, model.SentimentNegative, got.Label)

	require.NoError(t, c.Close())
	assert.True(t, enc.closed)
}

func TestClassifierPropagatesEncoderError(t *testing.T) {
	c := New(&stubEncoder{err: errors.New("boom")})
	_, err := c.Predict("x")
	assert.ErrorContains(t, err, "boom")
}

const testModelDir = "../../../data/models/sentiment"

func TestONNXEncoderIntegration(t *testing.T) {
	if _, err := os.Stat(testModelDir + "/model.onnx"); os.IsNotExist(err) {
		t.Skip("sentiment model not found; export it to data/models/sentiment first")
	}

	enc, err := Open(testModelDir, Options{})
	require.NoError(t, err)
	defer enc.Close()

	c := New(enc)
	for _, text := range []string{"harika bir hizmet, tesekkurler", "", "odeme yapamadim"} {
		got, err := c.Predict(text)
		require.NoError(t, err)
		assert.Contains(t, []string{model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative}, got.Label)
		assert.GreaterOrEqual(t, got.Confidence, 0.0)
		assert.LessOrEqual(t, got.Confidence, 1.0)
	}
}
