package model

// VerdictLevel is the numeric bucket a final score falls into. It is a pure
// function of the score; critical concerns never move a score between levels.
type VerdictLevel string

const (
	LevelStrong VerdictLevel = "strong"
	LevelMixed  VerdictLevel = "mixed"
	LevelWeak   VerdictLevel = "weak"
	LevelNone   VerdictLevel = "none"
)

// Severity drives how a verdict renders.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// MessageColors carries the display palette for a verdict message.
type MessageColors struct {
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
}

// VerdictMessage is the human-facing rendering of a score. It is a view
// derived entirely from (score, hasCriticalConcerns) and is regenerable at
// any time; the score remains the source of truth.
type VerdictMessage struct {
	Level        VerdictLevel  `json:"level"`
	Label        string        `json:"label"`
	ShortMessage string        `json:"short_message"`
	LongMessage  string        `json:"long_message"`
	Severity     Severity      `json:"severity"`
	Action       string        `json:"action"`
	Colors       MessageColors `json:"colors"`
}

// Dimension names a sub-score of the final verdict.
type Dimension string

const (
	DimensionPain        Dimension = "pain"
	DimensionMarket      Dimension = "market"
	DimensionCompetition Dimension = "competition"
	DimensionTiming      Dimension = "timing"
)

// DimensionScores holds the per-dimension sub-scores that feed the final
// weighted score. A nil entry means the dimension could not be computed and
// must be surfaced as missing, never defaulted.
type DimensionScores struct {
	Pain        *float64 `json:"pain,omitempty"`
	Market      *float64 `json:"market,omitempty"`
	Competition *float64 `json:"competition,omitempty"`
	Timing      *float64 `json:"timing,omitempty"`
}

// Missing lists the dimensions that have no score.
func (d DimensionScores) Missing() []Dimension {
	var out []Dimension
	if d.Pain == nil {
		out = append(out, DimensionPain)
	}
	if d.Market == nil {
		out = append(out, DimensionMarket)
	}
	if d.Competition == nil {
		out = append(out, DimensionCompetition)
	}
	if d.Timing == nil {
		out = append(out, DimensionTiming)
	}
	return out
}
