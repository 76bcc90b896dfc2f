package model

// Stage names one of the five prediction stages.
type Stage string

const (
	StageEntity     Stage = "entity"
	StageTopic      Stage = "konu"
	StageSentiment  Stage = "sentiment"
	StageSeverity   Stage = "severity"
	StageMultilabel Stage = "multilabel"
)

// Stages lists every stage in display order.
var Stages = []Stage{StageEntity, StageTopic, StageSentiment, StageSeverity, StageMultilabel}

// Record is the aggregated prediction for a single input text.
type Record struct {
	Text       string           `json:"text"`
	Entity     string           `json:"Entity"`
	Topic      string           `json:"Konu"`
	Sentiment  Sentiment        `json:"Sentiment"`
	Severity   Severity         `json:"Severity"`
	Multilabel Multilabel       `json:"Multilabel"`
	Errors     map[Stage]string `json:"errors,omitempty"` // per-stage failure, keyed by stage
}

// Sentiment is the 3-way sentiment prediction.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Severity is the ordinal severity plus its derived action recommendation.
type Severity struct {
	Level         int    `json:"severity_label"`
	ActionStatus  int    `json:"action_status"`
	ActionMessage string `json:"action_message"`
}

// Multilabel holds seven independent 0/1 category flags.
type Multilabel struct {
	Ticket          int `json:"bilet"`
	CustomerService int `json:"musteri_hizmetleri"`
	Payment         int `json:"odeme"`
	App             int `json:"uygulama"`
	Passolig        int `json:"passolig"`
	PassoligCard    int `json:"passolig kart"`
	Other           int `json:"diger"`
}

// Failed reports whether the given stage recorded an error.
func (r Record) Failed(s Stage) bool {
	_, ok := r.Errors[s]
	return ok
}
