package talepnlp

import "github.com/crimson-sun/talepnlp/internal/model"

// Stage names a prediction stage.
type Stage string

const (
	StageEntity     Stage = Stage(model.StageEntity)
	StageTopic      Stage = Stage(model.StageTopic)
	StageSentiment  Stage = Stage(model.StageSentiment)
	StageSeverity   Stage = Stage(model.StageSeverity)
	StageMultilabel Stage = Stage(model.StageMultilabel)
)

// Prediction is the aggregated result for one message.
// This is the stable public type; internal representations may evolve
// independently.
type Prediction struct {
	Text      string           `json:"text"`
	Entity    string           `json:"entity"` // "; "-joined matches or "No entity found."
	Topic     string           `json:"konu"`
	Sentiment Sentiment        `json:"sentiment"`
	Severity  Severity         `json:"severity"`
	Flags     Flags            `json:"flags"`
	Errors    map[Stage]string `json:"errors,omitempty"` // stages that could not run
}

// Sentiment is a label (positive, neutral, negative) with its probability.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Severity is the 0–2 level with its derived action.
type Severity struct {
	Level         int    `json:"level"`
	ActionStatus  int    `json:"action_status"`
	ActionMessage string `json:"action_message"`
}

// Flags are the seven independent category indicators.
type Flags struct {
	Ticket          bool `json:"bilet"`
	CustomerService bool `json:"musteri_hizmetleri"`
	Payment         bool `json:"odeme"`
	App             bool `json:"uygulama"`
	Passolig        bool `json:"passolig"`
	PassoligCard    bool `json:"passolig_kart"`
	Other           bool `json:"diger"`
}

// Topics returns the labels Prediction.Topic can take.
func Topics() []string {
	return append([]string(nil), model.TopicLabels...)
}

func predictionFromRecord(r model.Record) Prediction {
	m := r.Multilabel
	p := Prediction{
		Text:      r.Text,
		Entity:    r.Entity,
		Topic:     r.Topic,
		Sentiment: Sentiment{Label: r.Sentiment.Label, Confidence: r.Sentiment.Confidence},
		Severity: Severity{
			Level:         r.Severity.Level,
			ActionStatus:  r.Severity.ActionStatus,
			ActionMessage: r.Severity.ActionMessage,
		},
		Flags: Flags{
			Ticket:          m.Ticket == 1,
			CustomerService: m.CustomerService == 1,
			Payment:         m.Payment == 1,
			App:             m.App == 1,
			Passolig:        m.Passolig == 1,
			PassoligCard:    m.PassoligCard == 1,
			Other:           m.Other == 1,
		},
	}
	if len(r.Errors) > 0 {
		p.Errors = make(map[Stage]string, len(r.Errors))
		for s, msg := range r.Errors {
			p.Errors[Stage(s)] = msg
		}
	}
	return p
}
