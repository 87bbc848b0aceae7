package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/market"
	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/relevance"
	"github.com/foundersignal/validate-cli/internal/store"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		TierCore:     0.45,
		TierStrong:   0.35,
		TierRelated:  0.25,
		TierAdjacent: 0.15,

		VerdictStrong: 7.5,
		VerdictMixed:  5.0,
		VerdictWeak:   4.0,

		PainWeight:        0.30,
		MarketWeight:      0.25,
		CompetitionWeight: 0.25,
		TimingWeight:      0.20,

		DefaultGeography: "Global",
		DefaultPrice:     29.0,
		DefaultMSC:       1000000.0,
	}
}

// scriptedScorer assigns each signal the score stored under its ID.
type scriptedScorer struct {
	scores map[string]float64
	usage  model.TokenUsage
}

func (s *scriptedScorer) ScoreSignals(_ context.Context, _ string, signals []model.Signal) ([]relevance.ScoredSignal, model.TokenUsage, error) {
	out := make([]relevance.ScoredSignal, len(signals))
	for i, sig := range signals {
		out[i] = relevance.ScoredSignal{Signal: sig, Score: s.scores[sig.ID]}
	}
	return out, s.usage, nil
}

// stubCompleter returns a canned response or error.
type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (c *stubCompleter) Complete(context.Context, string) (string, market.Usage, error) {
	c.calls++
	if c.err != nil {
		return "", market.Usage{}, c.err
	}
	return c.response, market.Usage{Provider: "anthropic", Model: "test", InputTokens: 100, OutputTokens: 50}, nil
}

const sizingResponse = `{
	"tam": {"value": 2000000000, "description": "t", "reasoning": "r"},
	"sam": {"value": 400000000, "description": "s", "reasoning": "r"},
	"som": {"value": 50000, "description": "o", "reasoning": "r"},
	"customers_needed": 2874,
	"penetration_required": 5.7,
	"market_score": 7.5,
	"achievability": "achievable",
	"verdict": "reachable with focused distribution",
	"suggestions": ["narrow the segment"],
	"confidence": "medium"
}`

// tieredSignals builds a corpus that buckets 40/30/30/20 across the tiers.
func tieredSignals(scores map[string]float64) []model.Signal {
	build := func(n int, prefix string, score float64, body string) []model.Signal {
		out := make([]model.Signal, n)
		for i := range out {
			id := fmt.Sprintf("%s-%d", prefix, i)
			out[i] = model.Signal{ID: id, Source: model.SourceForum, Community: "r/freelance", Body: body}
			scores[id] = score
		}
		return out
	}

	var signals []model.Signal
	signals = append(signals, build(40, "core", 0.60, "I hate chasing invoices, it takes forever every single month.")...)
	signals = append(signals, build(30, "strong", 0.40, "Tracking unpaid invoices is frustrating and I wish it were automatic.")...)
	signals = append(signals, build(30, "related", 0.30, "Bookkeeping in general eats my evenings.")...)
	signals = append(signals, build(20, "adjacent", 0.20, "Scheduling client calls is annoying too.")...)
	return signals
}

func testPipeline(scorer relevance.Scorer, completer market.Completer, st store.Store) *Pipeline {
	return New(Options{
		Store:     st,
		Scorer:    scorer,
		Completer: completer,
		Analysis:  testAnalysisConfig(),
		Anthropic: config.AnthropicConfig{HaikuModel: "claude-haiku-4-5-20251001"},
	})
}

func TestRun_FullCorpus(t *testing.T) {
	scores := map[string]float64{}
	signals := tieredSignals(scores)
	scorer := &scriptedScorer{scores: scores, usage: model.TokenUsage{InputTokens: 5000, OutputTokens: 1000}}
	completer := &stubCompleter{response: sizingResponse}

	p := testPipeline(scorer, completer, nil)
	hyp := model.Hypothesis{Text: "Freelancers will pay for automated invoice chasing"}

	result, err := p.Run(context.Background(), hyp, signals)
	require.NoError(t, err)

	assert.Equal(t, 40, result.Metrics.Core)
	assert.Equal(t, 30, result.Metrics.Strong)
	assert.Equal(t, 30, result.Metrics.Related)
	assert.Equal(t, 20, result.Metrics.Adjacent)
	assert.Equal(t, 120, result.Metrics.Total)
	assert.Equal(t, 70, result.Metrics.AnalysisSignals())
	assert.Equal(t, 20, result.Metrics.PivotPotential())

	require.NotNil(t, result.Dimensions.Pain)
	require.NotNil(t, result.Dimensions.Market)
	assert.Equal(t, 7.5, *result.Dimensions.Market)
	assert.ElementsMatch(t, []model.Dimension{model.DimensionCompetition, model.DimensionTiming}, result.Missing)

	assert.False(t, result.Incomplete)
	assert.Greater(t, result.Score, 0.0)
	assert.NotEmpty(t, result.Message.Label)
	require.NotNil(t, result.Themes)
	require.NotNil(t, result.Market)
	assert.Greater(t, result.TotalCost, 0.0)
	assert.Equal(t, 5100, result.Usage.InputTokens)
	assert.Equal(t, 1050, result.Usage.OutputTokens)
}

func TestRun_MarketFailureIsPartial(t *testing.T) {
	scores := map[string]float64{}
	signals := tieredSignals(scores)
	scorer := &scriptedScorer{scores: scores}
	completer := &stubCompleter{err: fmt.Errorf("backend unavailable")}

	p := testPipeline(scorer, completer, nil)
	result, err := p.Run(context.Background(), model.Hypothesis{Text: "some hypothesis"}, signals)
	require.NoError(t, err)

	assert.True(t, result.Incomplete)
	assert.NotEmpty(t, result.FailureNote)
	assert.Nil(t, result.Market)
	assert.Nil(t, result.Dimensions.Market)
	assert.Contains(t, result.Missing, model.DimensionMarket)

	// Pain alone still yields a score.
	require.NotNil(t, result.Dimensions.Pain)
	assert.Greater(t, result.Score, 0.0)
}

func TestRun_GateFiltersBySubject(t *testing.T) {
	scores := map[string]float64{
		"about": 0.6,
		"other": 0.6,
	}
	signals := []model.Signal{
		{ID: "about", Source: model.SourceForum, Body: "Loom makes screen recording painless."},
		{ID: "other", Source: model.SourceForum, Body: "I prefer written docs over video."},
	}
	scorer := &scriptedScorer{scores: scores}
	completer := &stubCompleter{response: sizingResponse}

	p := testPipeline(scorer, completer, nil)
	hyp := model.Hypothesis{Text: "screen recording", Subject: "Loom: Screen Recorder"}

	result, err := p.Run(context.Background(), hyp, signals)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Metrics.Total, "gate drops the signal that never mentions the subject")
}

func TestRun_CriticalConcernsOverride(t *testing.T) {
	scores := map[string]float64{}
	signals := tieredSignals(scores)
	scorer := &scriptedScorer{scores: scores}

	unrealistic := strings.Replace(sizingResponse, `"achievability": "achievable"`, `"achievability": "unrealistic"`, 1)
	unrealistic = strings.Replace(unrealistic, `"market_score": 7.5`, `"market_score": 9.5`, 1)
	completer := &stubCompleter{response: unrealistic}

	p := testPipeline(scorer, completer, nil)
	result, err := p.Run(context.Background(), model.Hypothesis{Text: "some hypothesis"}, signals)
	require.NoError(t, err)

	if result.Score >= 5.0 {
		assert.Equal(t, "Review Required", result.Message.Label)
		assert.Equal(t, model.SeverityWarning, result.Message.Severity)
	}
}

func TestRunJob_PersistsResult(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	scores := map[string]float64{}
	signals := tieredSignals(scores)
	scorer := &scriptedScorer{scores: scores}
	completer := &stubCompleter{response: sizingResponse}
	p := testPipeline(scorer, completer, st)

	job, err := st.CreateJob(ctx, model.Hypothesis{Text: "Freelancers will pay for automated invoice chasing"})
	require.NoError(t, err)
	require.NoError(t, st.SaveSignals(ctx, job.ID, signals))

	result, err := p.RunJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	saved, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusComplete, saved.Status)
	require.NotNil(t, saved.Result)
	assert.Equal(t, result.Score, saved.Result.Score)
	assert.Equal(t, 120, saved.Result.Metrics.Total)
}

func TestRunJob_MarksFailedOnClassifierError(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	p := testPipeline(failingScorer{}, &stubCompleter{response: sizingResponse}, st)

	job, err := st.CreateJob(ctx, model.Hypothesis{Text: "anything"})
	require.NoError(t, err)
	require.NoError(t, st.SaveSignals(ctx, job.ID, []model.Signal{{ID: "s1", Source: model.SourceForum, Body: "text"}}))

	_, err = p.RunJob(ctx, job.ID)
	require.Error(t, err)

	saved, getErr := st.GetJob(ctx, job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.JobStatusFailed, saved.Status)
}

type failingScorer struct{}

func (failingScorer) ScoreSignals(context.Context, string, []model.Signal) ([]relevance.ScoredSignal, model.TokenUsage, error) {
	return nil, model.TokenUsage{}, fmt.Errorf("scorer offline")
}

func TestPainScore_MissingWithoutAnalysisSignals(t *testing.T) {
	th := &model.ThemeExtraction{}
	assert.Nil(t, painScore(model.TieredMetrics{Total: 10, Related: 10}, th))
	assert.Nil(t, painScore(model.TieredMetrics{}, th))

	m := model.TieredMetrics{Total: 10, Core: 4, Strong: 2}
	got := painScore(m, &model.ThemeExtraction{
		ProblemPhrases:    []string{"a", "b", "c", "d", "e"},
		EmotionalLanguage: []string{"frustrat", "hate"},
	})
	require.NotNil(t, got)
	assert.Greater(t, *got, 0.0)
	assert.LessOrEqual(t, *got, 10.0)
}
