package tfidf

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern mirrors scikit-learn's default token_pattern (?u)\b\w\w+\b:
// maximal runs of two or more Unicode word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Spec is the portable export of a fitted TF-IDF vectorizer.
type Spec struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramRange  [2]int         `json:"ngram_range"`
	Lowercase   *bool          `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"` // "l2" (default), "l1", or "none"
}

// Vector is a sparse feature vector with indices in ascending order.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int { return len(v.Indices) }

// Vectorizer turns text into TF-IDF feature vectors using a fixed,
// pre-fitted vocabulary. It holds no mutable state and is safe for
// concurrent use.
type Vectorizer struct {
	vocab       map[string]int
	idf         []float64
	minN, maxN  int
	lowercase   bool
	sublinearTF bool
	norm        string
}

// New validates a Spec and builds a Vectorizer from it.
func New(s Spec) (*Vectorizer, error) {
	if len(s.Vocabulary) == 0 {
		return nil, errors.New("tfidf: empty vocabulary")
	}
	if len(s.IDF) != 0 && len(s.IDF) != len(s.Vocabulary) {
		return nil, fmt.Errorf("tfidf: idf length %d != vocabulary size %d", len(s.IDF), len(s.Vocabulary))
	}
	for term, idx := range s.Vocabulary {
		if idx < 0 || idx >= len(s.Vocabulary) {
			return nil, fmt.Errorf("tfidf: term %q has out-of-range index %d", term, idx)
		}
	}

	minN, maxN := s.NgramRange[0], s.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("tfidf: invalid ngram_range %v", s.NgramRange)
	}

	norm := s.Norm
	switch norm {
	case "":
		norm = "l2"
	case "l1", "l2", "none":
	default:
		return nil, fmt.Errorf("tfidf: unsupported norm %q", s.Norm)
	}

	lower := true
	if s.Lowercase != nil {
		lower = *s.Lowercase
	}

	return &Vectorizer{
		vocab:       s.Vocabulary,
		idf:         s.IDF,
		minN:        minN,
		maxN:        maxN,
		lowercase:   lower,
		sublinearTF: s.SublinearTF,
		norm:        norm,
	}, nil
}

// Dim returns the feature dimensionality (vocabulary size).
func (v *Vectorizer) Dim() int {
	return len(v.vocab)
}

// Transform vectorizes a single text. Out-of-vocabulary terms are ignored;
// text with no known terms yields an empty vector.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, term := range v.analyze(text) {
		if idx, ok := v.vocab[term]; ok {
			counts[idx]++
		}
	}

	out := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)

	for _, idx := range out.Indices {
		tf := counts[idx]
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		if len(v.idf) > 0 {
			tf *= v.idf[idx]
		}
		out.Values = append(out.Values, tf)
	}

	normalize(out.Values, v.norm)
	return out
}

// analyze produces the word n-grams for text.
func (v *Vectorizer) analyze(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	tokens := tokenPattern.FindAllString(text, -1)

	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}

	var grams []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

func normalize(vals []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, x := range vals {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range vals {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range vals {
		vals[i] /= total
	}
}
