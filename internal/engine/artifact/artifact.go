// Package artifact decodes the portable JSON exports of the fitted
// scikit-learn models: TF-IDF vectorizers, linear classifiers,
// multi-output classifiers, and vectorizer+classifier pipelines.
//
// A top-level JSON array is a tuple: an artifact exported as
// (model, vectorizer) keeps that element order.
package artifact

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crimson-sun/talepnlp/internal/engine/classifier"
	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
)

// ErrInvalid is returned for artifacts that are malformed or of the wrong kind.
var ErrInvalid = errors.New("invalid artifact")

const (
	kindLinear      = "linear"
	kindMultiOutput = "multi_output"
	kindPipeline    = "pipeline"
	kindVectorizer  = "tfidf"
)

// Pipeline is a vectorizer followed by a classifier.
type Pipeline struct {
	Vectorizer *tfidf.Vectorizer
	Classifier *classifier.Linear
}

// Read loads a raw artifact from disk. Paths ending in .gz are decompressed.
func Read(path string) (json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("artifact: %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("artifact: %s: %w: not valid JSON", path, ErrInvalid)
	}
	return data, nil
}

// Unwrap splits a tuple artifact into its elements. A non-array artifact is
// returned as a single element with isTuple false.
func Unwrap(raw json.RawMessage) (elems []json.RawMessage, isTuple bool, err error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []json.RawMessage{raw}, false, nil
	}
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, true, fmt.Errorf("artifact: %w: %v", ErrInvalid, err)
	}
	if len(elems) == 0 {
		return nil, true, fmt.Errorf("artifact: %w: empty tuple", ErrInvalid)
	}
	return elems, true, nil
}

// DecodeLinear decodes a single linear classifier.
func DecodeLinear(raw json.RawMessage) (*classifier.Linear, error) {
	var m struct {
		Type string `json:"type"`
		classifier.Linear
	}
	if err := decodeKind(raw, kindLinear, &m); err != nil {
		return nil, err
	}
	if err := m.Linear.Validate(); err != nil {
		return nil, fmt.Errorf("artifact: %w: %v", ErrInvalid, err)
	}
	return &m.Linear, nil
}

// DecodeMultiOutput decodes a multi-output classifier.
func DecodeMultiOutput(raw json.RawMessage) (*classifier.MultiOutput, error) {
	var m struct {
		Type string `json:"type"`
		classifier.MultiOutput
	}
	if err := decodeKind(raw, kindMultiOutput, &m); err != nil {
		return nil, err
	}
	if err := m.MultiOutput.Validate(); err != nil {
		return nil, fmt.Errorf("artifact: %w: %v", ErrInvalid, err)
	}
	return &m.MultiOutput, nil
}

// DecodeVectorizer decodes a TF-IDF vectorizer.
func DecodeVectorizer(raw json.RawMessage) (*tfidf.Vectorizer, error) {
	var s struct {
		Type string `json:"type"`
		tfidf.Spec
	}
	if err := decodeKind(raw, kindVectorizer, &s); err != nil {
		return nil, err
	}
	v, err := tfidf.New(s.Spec)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w: %v", ErrInvalid, err)
	}
	return v, nil
}

// DecodePipeline decodes a vectorizer+classifier pipeline and checks that the
// classifier's feature width matches the vocabulary.
func DecodePipeline(raw json.RawMessage) (*Pipeline, error) {
	var p struct {
		Type       string          `json:"type"`
		Vectorizer json.RawMessage `json:"vectorizer"`
		Classifier json.RawMessage `json:"classifier"`
	}
	if err := decodeKind(raw, kindPipeline, &p); err != nil {
		return nil, err
	}
	if p.Vectorizer == nil || p.Classifier == nil {
		return nil, fmt.Errorf("artifact: %w: pipeline needs vectorizer and classifier", ErrInvalid)
	}
	vec, err := DecodeVectorizer(p.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("pipeline vectorizer: %w", err)
	}
	cls, err := DecodeLinear(p.Classifier)
	if err != nil {
		return nil, fmt.Errorf("pipeline classifier: %w", err)
	}
	if err := CheckWidth(cls.Features(), vec); err != nil {
		return nil, err
	}
	return &Pipeline{Vectorizer: vec, Classifier: cls}, nil
}

// CheckWidth verifies a model's feature width against a vectorizer.
func CheckWidth(features int, vec *tfidf.Vectorizer) error {
	if features != vec.Dim() {
		return fmt.Errorf("artifact: %w: model expects %d features, vectorizer has %d",
			ErrInvalid, features, vec.Dim())
	}
	return nil
}

// decodeKind unmarshals raw into dst and checks the "type" discriminator.
// An absent type is accepted so hand-written artifacts stay terse.
func decodeKind(raw json.RawMessage, want string, dst any) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("artifact: %w: %v", ErrInvalid, err)
	}
	if head.Type != "" && head.Type != want {
		return fmt.Errorf("artifact: %w: expected %q, got %q", ErrInvalid, want, head.Type)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("artifact: %w: %v", ErrInvalid, err)
	}
	return nil
}
