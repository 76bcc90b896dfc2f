package entity

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// Extractor finds vocabulary entities in free text after spelling
// correction. It has no learned state and is safe for concurrent use.
type Extractor struct {
	entities    []string
	patterns    []*regexp2.Regexp
	corrections map[string][]string // lowercased phrase -> replacement tokens
	maxKeyLen   int                 // longest phrase, in tokens
}

// New compiles the lexicon. Each entity matches on a Unicode word boundary
// and may carry trailing word characters, so "passoligi" matches "passolig".
func New(lex Lexicon) (*Extractor, error) {
	e := &Extractor{
		corrections: make(map[string][]string, len(lex.Corrections)),
	}

	for _, ent := range lex.Entities {
		ent = strings.TrimSpace(ent)
		if ent == "" {
			continue
		}
		re, err := regexp2.Compile(`\b`+regexp2.Escape(ent)+`(?:\w+)?\b`, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("entity: compile %q: %w", ent, err)
		}
		e.entities = append(e.entities, ent)
		e.patterns = append(e.patterns, re)
	}
	if len(e.entities) == 0 {
		return nil, fmt.Errorf("entity: empty vocabulary")
	}

	for from, to := range lex.Corrections {
		words := strings.Fields(lower(from))
		if len(words) == 0 {
			continue
		}
		e.corrections[strings.Join(words, " ")] = strings.Fields(to)
		e.maxKeyLen = max(e.maxKeyLen, len(words))
	}
	return e, nil
}

// Correct lowercases the sentence with Turkish casing rules, splits it on
// whitespace, and replaces known misspellings. Longer phrases win over
// single tokens.
func (e *Extractor) Correct(sentence string) string {
	words := strings.Fields(lower(sentence))
	out := make([]string, 0, len(words))

	for i := 0; i < len(words); {
		matched := false
		for n := min(e.maxKeyLen, len(words)-i); n >= 1; n-- {
			if repl, ok := e.corrections[strings.Join(words[i:i+n], " ")]; ok {
				out = append(out, repl...)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, words[i])
			i++
		}
	}
	return strings.Join(out, " ")
}

// Match returns the vocabulary entities found in text, in vocabulary order.
func (e *Extractor) Match(text string) ([]string, error) {
	corrected := e.Correct(text)
	var found []string
	for i, re := range e.patterns {
		ok, err := re.MatchString(corrected)
		if err != nil {
			return nil, fmt.Errorf("entity: match %q: %w", e.entities[i], err)
		}
		if ok {
			found = append(found, e.entities[i])
		}
	}
	return found, nil
}

// Extract returns the matched entities joined by "; ", or model.NoEntity.
func (e *Extractor) Extract(text string) (string, error) {
	found, err := e.Match(text)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return model.NoEntity, nil
	}
	return strings.Join(found, "; "), nil
}

// Entities returns the compiled vocabulary.
func (e *Extractor) Entities() []string {
	return e.entities
}

// lower applies Turkish lowercasing (I→ı, İ→i). A Caser is stateful, so a
// fresh one is built per call.
func lower(s string) string {
	return cases.Lower(language.Turkish).String(s)
}
