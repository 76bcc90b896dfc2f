package sentiment

import (
	"fmt"
	"os"
	"strings"
)

// vocab is a WordPiece vocabulary. A token's ID is its zero-based line
// number in vocab.txt; on duplicate lines the last occurrence wins, as in
// HuggingFace's load_vocab.
type vocab struct {
	ids    map[string]int64
	tokens int

	padID, unkID, clsID, sepID int64
}

func loadVocab(path string) (*vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, fmt.Errorf("vocab: %s has no tokens", path)
	}

	v := &vocab{ids: make(map[string]int64, len(lines)), tokens: len(lines)}
	for i, line := range lines {
		v.ids[strings.TrimSuffix(line, "\r")] = int64(i)
	}

	for name, dst := range map[string]*int64{
		"[PAD]": &v.padID,
		"[UNK]": &v.unkID,
		"[CLS]": &v.clsID,
		"[SEP]": &v.sepID,
	} {
		id, ok := v.ids[name]
		if !ok {
			return nil, fmt.Errorf("vocab: %s lacks special token %s", path, name)
		}
		*dst = id
	}
	return v, nil
}

func (v *vocab) id(token string) (int64, bool) {
	id, ok := v.ids[token]
	return id, ok
}

func (v *vocab) size() int { return v.tokens }
