package model

// TopicLabels is the konu label table, indexed by the topic model's class index.
var TopicLabels = []string{
	"cagri merkezi yetkinlik", "diger", "genel", "odeme", "uygulama",
	"iptal", "degisiklik", "uyelik", "iade", "transfer", "fatura",
}

// DefaultTopic is reported for empty input.
const DefaultTopic = "genel"

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentLabels maps the encoder's class index to a label. The order
// follows the training label encoding and is not alphabetical.
var SentimentLabels = map[int]string{
	1: SentimentPositive,
	0: SentimentNeutral,
	2: SentimentNegative,
}

// Action messages keyed by severity level.
const (
	ActionUrgent  = "urgent action"
	ActionAdvised = "action advised"
	ActionNone    = "no action needed"
)

// SeverityFor derives the action fields from a severity level.
func SeverityFor(level int) Severity {
	s := Severity{Level: level}
	switch level {
	case 2:
		s.ActionStatus, s.ActionMessage = 1, ActionUrgent
	case 1:
		s.ActionStatus, s.ActionMessage = 1, ActionAdvised
	default:
		s.ActionMessage = ActionNone
	}
	return s
}

// NoEntity is returned when no vocabulary entity matches.
const NoEntity = "No entity found."

// MultilabelField binds one position of the multilabel model output to a
// named flag and its log column.
type MultilabelField struct {
	Column string
	Set    func(*Multilabel, int)
	Get    func(Multilabel) int
}

// MultilabelSchema pins the positional output order of the multilabel model.
// Reordering this table silently corrupts predictions.
var MultilabelSchema = [7]MultilabelField{
	{"bilet", func(m *Multilabel, v int) { m.Ticket = v }, func(m Multilabel) int { return m.Ticket }},
	{"musteri_hizmetleri", func(m *Multilabel, v int) { m.CustomerService = v }, func(m Multilabel) int { return m.CustomerService }},
	{"odeme", func(m *Multilabel, v int) { m.Payment = v }, func(m Multilabel) int { return m.Payment }},
	{"uygulama", func(m *Multilabel, v int) { m.App = v }, func(m Multilabel) int { return m.App }},
	{"passolig", func(m *Multilabel, v int) { m.Passolig = v }, func(m Multilabel) int { return m.Passolig }},
	{"passolig kart", func(m *Multilabel, v int) { m.PassoligCard = v }, func(m Multilabel) int { return m.PassoligCard }},
	{"diger", func(m *Multilabel, v int) { m.Other = v }, func(m Multilabel) int { return m.Other }},
}

// Columns is the fixed tabular log schema.
var Columns = []string{
	"text", "entity", "sentiment", "konu", "severity",
	"bilet", "musteri_hizmetleri", "odeme", "uygulama", "passolig", "passolig kart", "diger",
	"aksiyon",
}
