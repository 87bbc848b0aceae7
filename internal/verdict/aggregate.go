// Package verdict converts dimension sub-scores into the final 0-10 score and
// its human-facing message. Both derivations are pure functions so any verdict
// can be re-rendered from the stored score alone.
package verdict

import (
	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
)

// Aggregator holds the shared threshold and weight configuration. The same
// AnalysisConfig value is injected into the classifier, so tier and verdict
// thresholds can never drift apart.
type Aggregator struct {
	cfg config.AnalysisConfig
}

// NewAggregator creates an aggregator over the given configuration.
func NewAggregator(cfg config.AnalysisConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// WeightedScore combines the present dimensions into one 0-10 score. Missing
// dimensions are excluded and their weight is redistributed across the
// present ones; they are reported so callers can render a partial state
// instead of silently defaulting a score. Returns ok=false when no dimension
// is present.
func (a *Aggregator) WeightedScore(d model.DimensionScores) (score float64, missing []model.Dimension, ok bool) {
	type dim struct {
		value  *float64
		weight float64
	}
	dims := []dim{
		{d.Pain, a.cfg.PainWeight},
		{d.Market, a.cfg.MarketWeight},
		{d.Competition, a.cfg.CompetitionWeight},
		{d.Timing, a.cfg.TimingWeight},
	}

	var sum, weightSum float64
	for _, dm := range dims {
		if dm.value == nil {
			continue
		}
		sum += *dm.value * dm.weight
		weightSum += dm.weight
	}

	missing = d.Missing()
	if weightSum == 0 {
		return 0, missing, false
	}
	return sum / weightSum, missing, true
}

// ScoreToMessage derives the display message for a score. The threshold table
// is evaluated top-down; critical concerns replace the label and severity of
// scores at or above the mixed threshold but never change the level bucket.
func (a *Aggregator) ScoreToMessage(score float64, hasCriticalConcerns bool) model.VerdictMessage {
	var msg model.VerdictMessage

	switch {
	case score >= a.cfg.VerdictStrong:
		msg = model.VerdictMessage{
			Level:        model.LevelStrong,
			Label:        "Strong Signal",
			ShortMessage: "Validated. The evidence supports this hypothesis.",
			LongMessage:  "Signals show consistent demand with a reachable market. Move toward building a focused MVP.",
			Severity:     model.SeveritySuccess,
			Action:       "Proceed to MVP",
			Colors:       colorsFor(model.SeveritySuccess),
		}
	case score >= a.cfg.VerdictMixed:
		msg = model.VerdictMessage{
			Level:        model.LevelMixed,
			Label:        "Mixed Signals",
			ShortMessage: "Partially validated. Some dimensions are strong, others are not.",
			LongMessage:  "The evidence is split. Tighten the hypothesis or target segment before committing build time.",
			Severity:     model.SeverityWarning,
			Action:       "Refine and re-test",
			Colors:       colorsFor(model.SeverityWarning),
		}
	case score >= a.cfg.VerdictWeak:
		msg = model.VerdictMessage{
			Level:        model.LevelWeak,
			Label:        "Weak Signal",
			ShortMessage: "Thin evidence. The hypothesis is not supported as stated.",
			LongMessage:  "Demand signals are sparse or low-intensity. Consider the adjacent themes as pivot candidates.",
			Severity:     model.SeverityWarning,
			Action:       "Consider pivoting",
			Colors:       colorsFor(model.SeverityWarning),
		}
	default:
		msg = model.VerdictMessage{
			Level:        model.LevelNone,
			Label:        "No Signal",
			ShortMessage: "Not validated. The evidence does not support this hypothesis.",
			LongMessage:  "Little to no demand appears in the collected signals. Pursuing this as stated would be building on hope.",
			Severity:     model.SeverityError,
			Action:       "Do not proceed",
			Colors:       colorsFor(model.SeverityError),
		}
	}

	if hasCriticalConcerns && score >= a.cfg.VerdictMixed {
		msg.Label = "Review Required"
		msg.ShortMessage = "Score is promising but critical concerns were flagged."
		msg.LongMessage = "One or more dealbreaker-level concerns need manual review before acting on this verdict."
		msg.Severity = model.SeverityWarning
		msg.Action = "Review concerns"
		msg.Colors = colorsFor(model.SeverityWarning)
	}

	return msg
}

func colorsFor(severity model.Severity) model.MessageColors {
	switch severity {
	case model.SeveritySuccess:
		return model.MessageColors{Background: "#ecfdf5", Border: "#10b981", Text: "#065f46"}
	case model.SeverityWarning:
		return model.MessageColors{Background: "#fffbeb", Border: "#f59e0b", Text: "#92400e"}
	default:
		return model.MessageColors{Background: "#fef2f2", Border: "#ef4444", Text: "#991b1b"}
	}
}
