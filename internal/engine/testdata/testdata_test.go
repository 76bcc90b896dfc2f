package testdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/talepnlp/internal/engine/tfidf"
	"github.com/crimson-sun/talepnlp/internal/model"
)

func TestLoadCorpus(t *testing.T) {
	entries, err := LoadCorpus()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	columns := map[string]bool{}
	for _, f := range model.MultilabelSchema {
		columns[f.Column] = true
	}
	for i, e := range entries {
		assert.NotEmpty(t, e.Raw, "entry %d", i)
		assert.Contains(t, model.TopicLabels, e.ExpectedTopic, "entry %d", i)
		assert.True(t, e.ExpectedSeverity >= 0 && e.ExpectedSeverity <= 2, "entry %d", i)
		for _, f := range e.ExpectedFlags {
			assert.True(t, columns[f], "entry %d: unknown flag column %q", i, f)
		}
	}
}

func TestFixtureModelsValidate(t *testing.T) {
	vec, err := tfidf.New(VectorizerSpec())
	require.NoError(t, err)

	topic := TopicModel()
	require.NoError(t, topic.Validate())
	assert.Equal(t, vec.Dim(), topic.Features())

	sev := SeverityModel()
	require.NoError(t, sev.Validate())
	assert.Equal(t, vec.Dim(), sev.Features())

	ml := MultilabelModel()
	require.NoError(t, ml.Validate())
	assert.Len(t, ml.Estimators, len(model.MultilabelSchema))
}

func TestWriteModelDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteModelDir(dir))

	for _, name := range []string{TopicFile, SeverityFile, MultilabelFile, LexiconFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(dir, SentimentDir))
	assert.True(t, os.IsNotExist(err), "sentiment fixture should be absent")
}
