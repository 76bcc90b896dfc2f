package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// Display formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output writes prediction records to stdout, either as the human-readable
// summary printed after each prompt or as JSON.
type Output struct {
	w      io.Writer
	enc    *json.Encoder
	format string
}

// New creates a stdout Output. pretty indents JSON output.
func New(format string, pretty bool) *Output {
	return NewWriter(os.Stdout, format, pretty)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, format string, pretty bool) *Output {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{w: w, enc: enc, format: format}
}

func (o *Output) Write(_ context.Context, rec model.Record) error {
	var err error
	if o.format == FormatJSON {
		err = o.enc.Encode(rec)
	} else {
		_, err = io.WriteString(o.w, Summary(rec))
	}
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}

// Summary renders the prediction block shown in the REPL. A failed stage
// prints its error in place of the value.
func Summary(rec model.Record) string {
	var b strings.Builder
	b.WriteString("\nPrediction Results:\n")

	line := func(stage model.Stage, label, value string) {
		if msg, ok := rec.Errors[stage]; ok {
			value = "error: " + msg
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}

	line(model.StageEntity, "Entity", rec.Entity)
	line(model.StageTopic, "Konu", rec.Topic)
	line(model.StageSentiment, "Sentiment",
		fmt.Sprintf("%s (Confidence: %.2f)", rec.Sentiment.Label, rec.Sentiment.Confidence))
	line(model.StageSeverity, "Severity",
		fmt.Sprintf("Severity %d, Action Status: %d (%s)",
			rec.Severity.Level, rec.Severity.ActionStatus, rec.Severity.ActionMessage))

	flags := make([]string, len(model.MultilabelSchema))
	for i, f := range model.MultilabelSchema {
		flags[i] = fmt.Sprintf("%s=%d", f.Column, f.Get(rec.Multilabel))
	}
	line(model.StageMultilabel, "Multilabel", strings.Join(flags, ", "))
	return b.String()
}
