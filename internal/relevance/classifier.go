// Package relevance scores signals against a hypothesis and sorts them into
// tiers. Core and strong signals feed theme extraction; adjacent signals are
// surfaced as pivot potential.
package relevance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
)

// ScoredSignal is one scorer output. Err is set when the scorer could not
// produce a score for this signal; Score is meaningless in that case.
type ScoredSignal struct {
	Signal model.Signal
	Score  float64
	Err    error
}

// Scorer rates how relevant each signal is to the hypothesis, in [0,1].
type Scorer interface {
	ScoreSignals(ctx context.Context, hypothesis string, signals []model.Signal) ([]ScoredSignal, model.TokenUsage, error)
}

// Result is the outcome of classifying one batch of signals.
type Result struct {
	Assignments []model.TierAssignment
	Metrics     model.TieredMetrics
	Usage       model.TokenUsage
}

// Classifier assigns tiers to scored signals using the configured boundaries.
type Classifier struct {
	scorer Scorer
	cfg    config.AnalysisConfig
}

// NewClassifier creates a classifier backed by the given scorer.
func NewClassifier(scorer Scorer, cfg config.AnalysisConfig) *Classifier {
	return &Classifier{scorer: scorer, cfg: cfg}
}

// Classify scores every signal and buckets it into a tier. Signals the scorer
// fails on are counted as failed and excluded from the total; signals scoring
// below the adjacent boundary are discarded but still counted in the total.
func (c *Classifier) Classify(ctx context.Context, hypothesis string, signals []model.Signal) (*Result, error) {
	start := time.Now()
	result := &Result{}

	if len(signals) == 0 {
		result.Metrics.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result, nil
	}

	scored, usage, err := c.scorer.ScoreSignals(ctx, hypothesis, signals)
	if err != nil {
		return nil, err
	}
	result.Usage = usage

	for _, s := range scored {
		if s.Err != nil {
			result.Metrics.Failed++
			zap.L().Warn("relevance: signal scoring failed",
				zap.String("signal_id", s.Signal.ID),
				zap.Error(s.Err),
			)
			continue
		}

		result.Metrics.Total++
		tier, ok := c.tierFor(s.Score)
		if !ok {
			result.Metrics.Discarded++
			continue
		}

		switch tier {
		case model.TierCore:
			result.Metrics.Core++
		case model.TierStrong:
			result.Metrics.Strong++
		case model.TierRelated:
			result.Metrics.Related++
		case model.TierAdjacent:
			result.Metrics.Adjacent++
		}

		result.Assignments = append(result.Assignments, model.TierAssignment{
			Signal: s.Signal,
			Score:  s.Score,
			Tier:   tier,
		})
	}

	result.Metrics.ProcessingTimeMs = time.Since(start).Milliseconds()

	zap.L().Info("relevance: classified signals",
		zap.Int("total", result.Metrics.Total),
		zap.Int("core", result.Metrics.Core),
		zap.Int("strong", result.Metrics.Strong),
		zap.Int("related", result.Metrics.Related),
		zap.Int("adjacent", result.Metrics.Adjacent),
		zap.Int("discarded", result.Metrics.Discarded),
		zap.Int("failed", result.Metrics.Failed),
		zap.Int64("processing_time_ms", result.Metrics.ProcessingTimeMs),
	)

	return result, nil
}

// tierFor evaluates boundaries in descending order. A score exactly on a
// boundary lands in the higher tier. Returns false when the score falls below
// the adjacent boundary.
func (c *Classifier) tierFor(score float64) (model.Tier, bool) {
	switch {
	case score >= c.cfg.TierCore:
		return model.TierCore, true
	case score >= c.cfg.TierStrong:
		return model.TierStrong, true
	case score >= c.cfg.TierRelated:
		return model.TierRelated, true
	case score >= c.cfg.TierAdjacent:
		return model.TierAdjacent, true
	default:
		return "", false
	}
}

// ByTier groups assignments by their tier.
func ByTier(assignments []model.TierAssignment) map[model.Tier][]model.TierAssignment {
	out := make(map[model.Tier][]model.TierAssignment)
	for _, a := range assignments {
		out[a.Tier] = append(out[a.Tier], a)
	}
	return out
}

// AnalysisSet returns the core and strong signals, the subset used for theme
// extraction.
func AnalysisSet(assignments []model.TierAssignment) []model.Signal {
	var out []model.Signal
	for _, a := range assignments {
		if a.Tier == model.TierCore || a.Tier == model.TierStrong {
			out = append(out, a.Signal)
		}
	}
	return out
}
