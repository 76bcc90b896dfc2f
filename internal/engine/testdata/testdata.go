// Package testdata provides small hand-fitted model artifacts and a labeled
// corpus that agrees with them, so the loader and engine can be exercised
// without the production exports.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crimson-sun/talepnlp/internal/engine/classifier"
	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a message with the predictions the fixture models give it.
type CorpusEntry struct {
	Raw              string   `json:"raw"`
	ExpectedEntity   string   `json:"expected_entity"`
	ExpectedTopic    string   `json:"expected_topic"`
	ExpectedSeverity int      `json:"expected_severity"`
	ExpectedFlags    []string `json:"expected_flags"` // log columns whose flag is 1
}

// LoadCorpus parses the embedded corpus.json.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

// Vocabulary is the fitted vocabulary shared by every fixture model.
var Vocabulary = []string{
	"odeme", "yapamadim", "kart", "passolig", "bilet", "uygulama", "acilmiyor", "iptal",
	"iade", "musteri", "hizmetleri", "fatura", "tesekkurler", "acil", "transfer", "uyelik",
}

func feature(term string) int {
	for i, v := range Vocabulary {
		if v == term {
			return i
		}
	}
	panic("testdata: unknown term " + term)
}

// row builds a coefficient row with weight 1 on each term.
func row(terms ...string) []float64 {
	r := make([]float64, len(Vocabulary))
	for _, t := range terms {
		r[feature(t)] = 1
	}
	return r
}

// VectorizerSpec returns the shared TF-IDF vectorizer export.
func VectorizerSpec() tfidf.Spec {
	vocab := make(map[string]int, len(Vocabulary))
	idf := make([]float64, len(Vocabulary))
	for i, term := range Vocabulary {
		vocab[term] = i
		idf[i] = 1
	}
	return tfidf.Spec{Vocabulary: vocab, IDF: idf, NgramRange: [2]int{1, 1}, Norm: "l2"}
}

// TopicModel returns an 11-class model indexed like model.TopicLabels. Text
// with no known terms falls to class 2 ("genel").
func TopicModel() classifier.Linear {
	m := classifier.Linear{
		Classes:   []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		Intercept: make([]float64, 11),
	}
	m.Coef = [][]float64{
		row("musteri", "hizmetleri"),
		row(),
		row(),
		row("odeme", "yapamadim"),
		row("uygulama", "acilmiyor"),
		row("iptal"),
		row(),
		row("uyelik"),
		row("iade"),
		row("transfer"),
		row("fatura"),
	}
	m.Intercept[2] = 0.1
	return m
}

// SeverityModel returns a 3-class model: thanks → 0, payment/ticket trouble
// → 1, urgent/cancel → 2.
func SeverityModel() classifier.Linear {
	return classifier.Linear{
		Classes: []int{0, 1, 2},
		Coef: [][]float64{
			row("tesekkurler"),
			row("odeme", "yapamadim", "bilet", "acilmiyor"),
			row("acil", "iptal"),
		},
		Intercept: []float64{0.1, 0, 0},
	}
}

// MultilabelModel returns seven binary estimators in schema order.
func MultilabelModel() classifier.MultiOutput {
	terms := [][]string{
		{"bilet"},
		{"musteri", "hizmetleri"},
		{"odeme"},
		{"uygulama", "acilmiyor"},
		{"passolig"},
		{"kart"},
		{"fatura", "transfer"},
	}
	var m classifier.MultiOutput
	for _, ts := range terms {
		m.Estimators = append(m.Estimators, &classifier.Linear{
			Classes:   []int{0, 1},
			Coef:      [][]float64{row(ts...)},
			Intercept: []float64{-0.2},
		})
	}
	return m
}

// Paths of the fixture files inside a model directory, mirroring the
// production layout.
const (
	TopicFile      = "konu_model.json"
	SeverityFile   = "severity_classifier.json"
	MultilabelFile = "multilabel/multilabelclassifier.json"
	LexiconFile    = "entity_lexicon.yaml"
	SentimentDir   = "sentiment"
)

// WriteModelDir writes every fixture artifact under dir. The severity model
// is written as a (model, vectorizer) tuple and the multilabel model as a
// (model, vectorizer) tuple, matching the production exports.
func WriteModelDir(dir string) error {
	vec := typed("tfidf", VectorizerSpec())

	topic := map[string]any{
		"type":       "pipeline",
		"vectorizer": vec,
		"classifier": typed("linear", TopicModel()),
	}
	severity := []any{typed("linear", SeverityModel()), vec}
	multilabel := []any{typed("multi_output", MultilabelModel()), vec}

	files := map[string]any{
		TopicFile:      topic,
		SeverityFile:   severity,
		MultilabelFile: multilabel,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}

	lexicon := "entities: [passo, passolig, passolig kart]\ncorrections:\n  passolg: passolig\n  krt: kart\n"
	return os.WriteFile(filepath.Join(dir, LexiconFile), []byte(lexicon), 0o644)
}

// typed adds the artifact "type" discriminator to v's JSON object.
func typed(kind string, v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(err)
	}
	m["type"] = kind
	return m
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
