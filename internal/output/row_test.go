package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/talepnlp/internal/model"
)

func sampleRecord() model.Record {
	return model.Record{
		Text:       "passolig krt ile odeme yapamadim",
		Entity:     "passo; passolig; passolig kart",
		Topic:      "odeme",
		Sentiment:  model.Sentiment{Label: model.SentimentNegative, Confidence: 0.91},
		Severity:   model.SeverityFor(1),
		Multilabel: model.Multilabel{Payment: 1, Passolig: 1},
	}
}

func TestRowColumnOrder(t *testing.T) {
	row := Row(sampleRecord())
	assert.Equal(t, []string{
		"passolig krt ile odeme yapamadim",
		"passo; passolig; passolig kart",
		"negative",
		"odeme",
		"1",
		"0", "0", "1", "0", "1", "0", "0",
		"1",
	}, row)
	assert.Len(t, row, len(model.Columns))
}

func TestParseRowInvertsRow(t *testing.T) {
	rec := sampleRecord()
	got, err := ParseRow(Row(rec))
	require.NoError(t, err)

	rec.Sentiment.Confidence = 0
	assert.Equal(t, rec, got)
}

func TestParseRowErrors(t *testing.T) {
	_, err := ParseRow([]string{"a", "b"})
	assert.ErrorIs(t, err, ErrSchema)

	row := Row(sampleRecord())
	row[6] = "yes"
	_, err = ParseRow(row)
	assert.Error(t, err)
}

func TestCheckHeader(t *testing.T) {
	assert.NoError(t, CheckHeader(model.Columns))
	assert.ErrorIs(t, CheckHeader([]string{"text", "entity"}), ErrSchema)
}

func TestRowLeavesFailedStagesEmpty(t *testing.T) {
	rec := sampleRecord()
	rec.Severity = model.Severity{}
	rec.Multilabel = model.Multilabel{}
	rec.Errors = map[model.Stage]string{
		model.StageSeverity:   "model unavailable",
		model.StageMultilabel: "model unavailable",
	}

	row := Row(rec)
	assert.Equal(t, "", row[4], "severity")
	for i := 5; i < 12; i++ {
		assert.Equal(t, "", row[i], "column %q", model.Columns[i])
	}
	assert.Equal(t, "", row[12], "aksiyon")

	got, err := ParseRow(row)
	require.NoError(t, err)
	assert.Equal(t, model.Severity{}, got.Severity)
	assert.Equal(t, model.Multilabel{}, got.Multilabel)
	assert.True(t, got.Failed(model.StageSeverity))
	assert.True(t, got.Failed(model.StageMultilabel))
	assert.False(t, got.Failed(model.StageTopic))
	assert.Equal(t, "odeme", got.Topic)
}

func TestParseRowEmptyLabelsAreFailures(t *testing.T) {
	rec := sampleRecord()
	rec.Sentiment = model.Sentiment{}
	rec.Errors = map[model.Stage]string{model.StageSentiment: "boom"}

	got, err := ParseRow(Row(rec))
	require.NoError(t, err)
	assert.Equal(t, map[model.Stage]string{model.StageSentiment: FailedMark}, got.Errors)
	assert.Equal(t, 1, got.Severity.Level)
}
