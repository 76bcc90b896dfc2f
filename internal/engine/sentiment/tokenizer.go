package sentiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// defaultMaxSeqLen is the truncation length the sentiment model was
// fine-tuned with, [CLS] and [SEP] included.
const defaultMaxSeqLen = 128

// maxWordRunes is the longest word WordPiece will try to split; longer
// words become [UNK].
const maxWordRunes = 100

// tokenizerConfig is the subset of a HuggingFace tokenizer_config.json that
// changes how text is split.
type tokenizerConfig struct {
	DoLowerCase    *bool `json:"do_lower_case"`
	StripAccents   *bool `json:"strip_accents"`
	ModelMaxLength int   `json:"model_max_length"`
}

// loadTokenizerConfig reads tokenizer_config.json. A missing file is not an
// error and leaves every field unset.
func loadTokenizerConfig(path string) (tokenizerConfig, error) {
	var cfg tokenizerConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("tokenizer config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("tokenizer config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// tokenized is a padded batch in the flat [batchSize*seqLen] layout the
// ONNX session expects.
type tokenized struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	batchSize     int64
	seqLen        int64
}

// tokenizer splits text into BERT WordPiece IDs.
type tokenizer struct {
	vocab        *vocab
	lowercase    bool
	stripAccents bool
	maxSeqLen    int
}

func newTokenizer(vocabPath string, cfg tokenizerConfig) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}

	lower := cfg.DoLowerCase == nil || *cfg.DoLowerCase
	strip := lower
	if cfg.StripAccents != nil {
		strip = *cfg.StripAccents
	}
	maxLen := defaultMaxSeqLen
	if n := cfg.ModelMaxLength; n > 2 && n < maxLen {
		maxLen = n
	}
	return &tokenizer{vocab: v, lowercase: lower, stripAccents: strip, maxSeqLen: maxLen}, nil
}

// encode returns [CLS] ids... [SEP] for text, truncated to maxSeqLen.
func (t *tokenizer) encode(text string) []int64 {
	ids := make([]int64, 0, 16)
	ids = append(ids, t.vocab.clsID)
	budget := t.maxSeqLen - 2

words:
	for _, word := range splitWords(t.normalize(text)) {
		for _, id := range t.pieces(word) {
			if len(ids)-1 == budget {
				break words
			}
			ids = append(ids, id)
		}
	}
	return append(ids, t.vocab.sepID)
}

// tokenizeBatch encodes texts and pads them to the longest sequence.
func (t *tokenizer) tokenizeBatch(texts []string) tokenized {
	if len(texts) == 0 {
		return tokenized{}
	}
	seqs := make([][]int64, len(texts))
	longest := 0
	for i, text := range texts {
		seqs[i] = t.encode(text)
		longest = max(longest, len(seqs[i]))
	}
	return t.pack(seqs, longest)
}

func (t *tokenizer) pack(seqs [][]int64, seqLen int) tokenized {
	total := len(seqs) * seqLen
	out := tokenized{
		inputIDs:      make([]int64, total),
		attentionMask: make([]int64, total),
		tokenTypeIDs:  make([]int64, total),
		batchSize:     int64(len(seqs)),
		seqLen:        int64(seqLen),
	}
	for i, seq := range seqs {
		row := out.inputIDs[i*seqLen : (i+1)*seqLen]
		mask := out.attentionMask[i*seqLen : (i+1)*seqLen]
		for j := range row {
			if j < len(seq) {
				row[j] = seq[j]
				mask[j] = 1
			} else {
				row[j] = t.vocab.padID
			}
		}
	}
	return out
}

func (t *tokenizer) normalize(text string) string {
	if t.lowercase {
		text = strings.ToLower(text)
	}
	if !t.stripAccents {
		return text
	}
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, norm.NFD.String(text))
}

// pieces splits word greedily into the longest vocabulary entries, with
// continuation pieces prefixed by "##". A word that cannot be covered is a
// single [UNK].
func (t *tokenizer) pieces(word string) []int64 {
	// Rune start offsets plus the end of the string.
	bounds := make([]int, 0, len(word)+1)
	for i := range word {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(word))
	if len(bounds)-1 > maxWordRunes {
		return []int64{t.vocab.unkID}
	}

	var ids []int64
	for start := 0; start < len(bounds)-1; {
		matched := false
		for end := len(bounds) - 1; end > start; end-- {
			piece := word[bounds[start]:bounds[end]]
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab.id(piece); ok {
				ids = append(ids, id)
				start = end
				matched = true
				break
			}
		}
		if !matched {
			return []int64{t.vocab.unkID}
		}
	}
	return ids
}

// splitWords is BERT's basic split in one pass: control characters are
// dropped, whitespace separates words, and every punctuation mark or CJK
// ideograph stands alone.
func splitWords(text string) []string {
	var (
		words []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
		case isSpace(r):
			flush()
		case isPunct(r) || isCJK(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	return r != '\t' && r != '\n' && r != '\r' && unicode.IsControl(r)
}

// isPunct counts every non-alphanumeric ASCII symbol as punctuation, as
// BERT does, on top of Unicode P*.
func isPunct(r rune) bool {
	if r < 128 && r > ' ' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != 127 {
		return true
	}
	return unicode.IsPunct(r)
}

var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2A6DF, Stride: 1},
		{Lo: 0x2A700, Hi: 0x2CEAF, Stride: 1},
		{Lo: 0x2F800, Hi: 0x2FA1F, Stride: 1},
	},
}

func isCJK(r rune) bool { return unicode.Is(cjkRanges, r) }
