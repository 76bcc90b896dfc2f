package entity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon is the entity vocabulary plus the misspelling table applied
// before matching.
//
// Expected YAML format:
//
//	entities: [passo, passolig, passolig kart]
//	corrections:
//	  passolg: passolig
//	  krt: kart
type Lexicon struct {
	Entities    []string          `yaml:"entities"`
	Corrections map[string]string `yaml:"corrections"`
}

// DefaultLexicon returns the built-in vocabulary.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Entities: []string{"passo", "passolig", "passolig kart"},
		Corrections: map[string]string{
			"passolg":      "passolig",
			"passolig krt": "passolig kart",
			"krt":          "kart",
		},
	}
}

// LoadLexicon reads a lexicon from a YAML file.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("entity lexicon: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("entity lexicon: parse %s: %w", path, err)
	}
	if len(lex.Entities) == 0 {
		return Lexicon{}, fmt.Errorf("entity lexicon: %s lists no entities", path)
	}
	return lex, nil
}
