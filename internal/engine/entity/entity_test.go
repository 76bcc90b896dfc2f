package entity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/talepnlp/internal/model"
)

func newDefault(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(DefaultLexicon())
	require.NoError(t, err)
	return e
}

func TestCorrectReplacesMisspellings(t *testing.T) {
	e := newDefault(t)
	tests := []struct {
		in, want string
	}{
		{"passolig krt ile odeme yapamadim", "passolig kart ile odeme yapamadim"},
		{"KRT bloke oldu", "kart bloke oldu"},
		{"passolg  uygulamasi   acilmiyor", "passolig uygulamasi acilmiyor"},
		{"merhaba", "merhaba"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Correct(tt.in), "input %q", tt.in)
	}
}

func TestCorrectTurkishCasing(t *testing.T) {
	e := newDefault(t)
	assert.Equal(t, "passolig ıade", e.Correct("PASSOLİG IADE"))
}

func TestExtractEndToEndMisspelling(t *testing.T) {
	e := newDefault(t)
	got, err := e.Extract("passolig krt ile odeme yapamadim")
	require.NoError(t, err)
	assert.Equal(t, "passo; passolig; passolig kart", got)
}

func TestExtractTrailingWordCharacters(t *testing.T) {
	e := newDefault(t)
	found, err := e.Match("passoligi nasil alirim")
	require.NoError(t, err)
	assert.Equal(t, []string{"passo", "passolig"}, found)

	found, err = e.Match("passoligım çalışmıyor")
	require.NoError(t, err)
	assert.Equal(t, []string{"passo", "passolig"}, found)
}

func TestExtractRequiresLeadingBoundary(t *testing.T) {
	e := newDefault(t)
	got, err := e.Extract("xpassolig ve şpasso")
	require.NoError(t, err)
	assert.Equal(t, model.NoEntity, got)
}

func TestExtractNoEntitySentinel(t *testing.T) {
	e := newDefault(t)
	for _, text := range []string{"bilet iadesi istiyorum", "", "   "} {
		got, err := e.Extract(text)
		require.NoError(t, err)
		assert.Equal(t, model.NoEntity, got)
		assert.NotEmpty(t, got)
	}
}

func TestNewRejectsEmptyVocabulary(t *testing.T) {
	_, err := New(Lexicon{Entities: []string{"  "}})
	assert.Error(t, err)
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	body := "entities: [bilet, passolig]\ncorrections:\n  blt: bilet\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bilet", "passolig"}, lex.Entities)

	e, err := New(lex)
	require.NoError(t, err)
	got, err := e.Extract("blt alamadim")
	require.NoError(t, err)
	assert.Equal(t, "bilet", got)
}

func TestLoadLexiconErrors(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corrections: {}\n"), 0o644))
	_, err = LoadLexicon(path)
	assert.Error(t, err)
}
