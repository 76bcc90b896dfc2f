package output

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// FailedMark is the reason ParseRow records for a stage whose cells are
// empty in the log.
const FailedMark = "not recorded: stage failed"

// Row flattens a record into the tabular log columns, in model.Columns order.
// The aksiyon column carries the severity action status. Cells owned by a
// stage listed in rec.Errors are left empty.
func Row(rec model.Record) []string {
	cell := func(s model.Stage, v string) string {
		if rec.Failed(s) {
			return ""
		}
		return v
	}

	row := make([]string, 0, len(model.Columns))
	row = append(row,
		rec.Text,
		cell(model.StageEntity, rec.Entity),
		cell(model.StageSentiment, rec.Sentiment.Label),
		cell(model.StageTopic, rec.Topic),
		cell(model.StageSeverity, strconv.Itoa(rec.Severity.Level)),
	)
	for _, f := range model.MultilabelSchema {
		row = append(row, cell(model.StageMultilabel, strconv.Itoa(f.Get(rec.Multilabel))))
	}
	return append(row, cell(model.StageSeverity, strconv.Itoa(rec.Severity.ActionStatus)))
}

// ParseRow rebuilds a record from a log row. Fields the log does not keep
// (sentiment confidence, error text) are left zero. A stage with empty cells
// is reported in Errors with FailedMark and its fields stay zero.
func ParseRow(row []string) (model.Record, error) {
	if len(row) != len(model.Columns) {
		return model.Record{}, fmt.Errorf("%w: row has %d fields, want %d", ErrSchema, len(row), len(model.Columns))
	}
	last := len(row) - 1

	rec := model.Record{Text: row[0]}
	fail := func(s model.Stage) {
		if rec.Errors == nil {
			rec.Errors = make(map[model.Stage]string)
		}
		rec.Errors[s] = FailedMark
	}
	atoi := func(i int) (int, error) {
		n, err := strconv.Atoi(row[i])
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", model.Columns[i], err)
		}
		return n, nil
	}

	if rec.Entity = row[1]; rec.Entity == "" {
		fail(model.StageEntity)
	}
	if rec.Sentiment.Label = row[2]; rec.Sentiment.Label == "" {
		fail(model.StageSentiment)
	}
	if rec.Topic = row[3]; rec.Topic == "" {
		fail(model.StageTopic)
	}

	if row[4] == "" || row[last] == "" {
		fail(model.StageSeverity)
	} else {
		level, err := atoi(4)
		if err != nil {
			return model.Record{}, err
		}
		action, err := atoi(last)
		if err != nil {
			return model.Record{}, err
		}
		rec.Severity = model.SeverityFor(level)
		rec.Severity.ActionStatus = action
	}

	if row[5] == "" {
		fail(model.StageMultilabel)
		return rec, nil
	}
	for i, f := range model.MultilabelSchema {
		n, err := atoi(5 + i)
		if err != nil {
			return model.Record{}, err
		}
		f.Set(&rec.Multilabel, n)
	}
	return rec, nil
}

// CheckHeader verifies a log header against model.Columns.
func CheckHeader(header []string) error {
	if !slices.Equal(header, model.Columns) {
		return fmt.Errorf("%w: got %v", ErrSchema, header)
	}
	return nil
}
