// Package sentiment runs the transformer sentiment model: BERT WordPiece
// tokenization, an ONNX Runtime forward pass producing per-class logits,
// softmax, and the fixed index→label table.
package sentiment

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// labelOrder is model.SentimentLabels laid out by class index.
var labelOrder = [3]string{
	model.SentimentLabels[0],
	model.SentimentLabels[1],
	model.SentimentLabels[2],
}

// Encoder produces classification logits for text.
type Encoder interface {
	Logits(text string) ([]float32, error)
	Close() error
}

// Classifier maps encoder logits to a sentiment label and confidence.
type Classifier struct {
	enc Encoder
}

// New creates a Classifier over the given encoder.
func New(enc Encoder) *Classifier {
	return &Classifier{enc: enc}
}

// Predict returns the argmax label and its softmax probability.
func (c *Classifier) Predict(text string) (model.Sentiment, error) {
	logits, err := c.enc.Logits(text)
	if err != nil {
		return model.Sentiment{}, fmt.Errorf("sentiment: %w", err)
	}
	return FromLogits(logits)
}

// Close releases the encoder.
func (c *Classifier) Close() error {
	return c.enc.Close()
}

// FromLogits converts a single row of logits into a prediction.
func FromLogits(logits []float32) (model.Sentiment, error) {
	if len(logits) != len(labelOrder) {
		return model.Sentiment{}, fmt.Errorf("sentiment: got %d logits, want %d", len(logits), len(labelOrder))
	}
	probs := Softmax(logits)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return model.Sentiment{Label: labelOrder[best], Confidence: probs[best]}, nil
}

// Softmax returns the numerically stable softmax of logits.
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Options configures an ONNXEncoder.
type Options struct {
	LibPath string // ONNX Runtime shared library; defaults to <dir>/libonnxruntime.so
	Threads int    // intra-op threads; 0 keeps the runtime default
}

// ONNXEncoder is an Encoder backed by a local ONNX export of a HuggingFace
// sequence classification model.
type ONNXEncoder struct {
	session *onnxSession
	tok     *tokenizer
}

// Open loads model.onnx, vocab.txt, and tokenizer_config.json from dir.
func Open(dir string, opts Options) (*ONNXEncoder, error) {
	cfg, err := loadTokenizerConfig(filepath.Join(dir, "tokenizer_config.json"))
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}
	tok, err := newTokenizer(filepath.Join(dir, "vocab.txt"), cfg)
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}

	libPath := opts.LibPath
	if libPath == "" {
		libPath = filepath.Join(dir, "libonnxruntime.so")
	}
	sess, err := newONNXSession(filepath.Join(dir, "model.onnx"), libPath, opts.Threads)
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}

	return &ONNXEncoder{session: sess, tok: tok}, nil
}

// Logits runs a forward pass over text, truncated to the tokenizer's
// maximum sequence length.
func (e *ONNXEncoder) Logits(text string) ([]float32, error) {
	batch := e.tok.tokenizeBatch([]string{text})
	logits, err := e.session.infer(batch)
	if err != nil {
		return nil, err
	}
	if int64(len(logits)) != e.session.numLabels {
		return nil, errors.New("onnx: unexpected logits length")
	}
	return logits, nil
}

// Close releases ONNX Runtime resources.
func (e *ONNXEncoder) Close() error {
	if e.session != nil {
		return e.session.close()
	}
	return nil
}
