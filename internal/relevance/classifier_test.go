package relevance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		TierCore:     0.45,
		TierStrong:   0.35,
		TierRelated:  0.25,
		TierAdjacent: 0.15,
	}
}

// stubScorer returns canned scores keyed by signal ID.
type stubScorer struct {
	scores map[string]float64
	fails  map[string]error
}

func (s *stubScorer) ScoreSignals(_ context.Context, _ string, signals []model.Signal) ([]ScoredSignal, model.TokenUsage, error) {
	out := make([]ScoredSignal, len(signals))
	for i, sig := range signals {
		if err, ok := s.fails[sig.ID]; ok {
			out[i] = ScoredSignal{Signal: sig, Err: err}
			continue
		}
		out[i] = ScoredSignal{Signal: sig, Score: s.scores[sig.ID]}
	}
	return out, model.TokenUsage{}, nil
}

func sig(id string) model.Signal {
	return model.Signal{ID: id, Source: model.SourceForum, Body: "body"}
}

func TestClassifier_TierBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		tier  model.Tier
		kept  bool
	}{
		{0.90, model.TierCore, true},
		{0.45, model.TierCore, true},
		{0.449999, model.TierStrong, true},
		{0.35, model.TierStrong, true},
		{0.349999, model.TierRelated, true},
		{0.25, model.TierRelated, true},
		{0.249999, model.TierAdjacent, true},
		{0.15, model.TierAdjacent, true},
		{0.149999, "", false},
		{0.0, "", false},
	}

	c := NewClassifier(nil, testAnalysisConfig())
	for _, tt := range tests {
		tier, kept := c.tierFor(tt.score)
		assert.Equal(t, tt.kept, kept, "score %v", tt.score)
		if tt.kept {
			assert.Equal(t, tt.tier, tier, "score %v", tt.score)
		}
	}
}

func TestClassifier_Metrics(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{
		"a": 0.80, // core
		"b": 0.50, // core
		"c": 0.40, // strong
		"d": 0.30, // related
		"e": 0.20, // adjacent
		"f": 0.05, // discarded
	}}

	c := NewClassifier(scorer, testAnalysisConfig())
	result, err := c.Classify(context.Background(), "note taking app", []model.Signal{
		sig("a"), sig("b"), sig("c"), sig("d"), sig("e"), sig("f"),
	})
	require.NoError(t, err)

	m := result.Metrics
	assert.Equal(t, 2, m.Core)
	assert.Equal(t, 1, m.Strong)
	assert.Equal(t, 1, m.Related)
	assert.Equal(t, 1, m.Adjacent)
	assert.Equal(t, 1, m.Discarded)
	assert.Equal(t, 0, m.Failed)
	assert.Equal(t, 6, m.Total)
	assert.Equal(t, 3, m.AnalysisSignals())
	assert.Equal(t, 1, m.PivotPotential())
	assert.LessOrEqual(t, m.Core+m.Strong+m.Related+m.Adjacent, m.Total)

	// Discarded signals get no assignment.
	assert.Len(t, result.Assignments, 5)
}

func TestClassifier_FailedExcludedFromTotal(t *testing.T) {
	scorer := &stubScorer{
		scores: map[string]float64{"a": 0.80},
		fails:  map[string]error{"b": assert.AnError},
	}

	c := NewClassifier(scorer, testAnalysisConfig())
	result, err := c.Classify(context.Background(), "hypothesis", []model.Signal{sig("a"), sig("b")})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Metrics.Total)
	assert.Equal(t, 1, result.Metrics.Failed)
	assert.Equal(t, 1, result.Metrics.Core)
}

func TestClassifier_EmptyInput(t *testing.T) {
	c := NewClassifier(&stubScorer{}, testAnalysisConfig())
	result, err := c.Classify(context.Background(), "hypothesis", nil)
	require.NoError(t, err)
	assert.Zero(t, result.Metrics.Total)
	assert.Empty(t, result.Assignments)
}

func TestAnalysisSet(t *testing.T) {
	assignments := []model.TierAssignment{
		{Signal: sig("a"), Tier: model.TierCore},
		{Signal: sig("b"), Tier: model.TierStrong},
		{Signal: sig("c"), Tier: model.TierRelated},
		{Signal: sig("d"), Tier: model.TierAdjacent},
	}
	set := AnalysisSet(assignments)
	require.Len(t, set, 2)
	assert.Equal(t, "a", set[0].ID)
	assert.Equal(t, "b", set[1].ID)
}

func TestByTier(t *testing.T) {
	assignments := []model.TierAssignment{
		{Signal: sig("a"), Tier: model.TierCore},
		{Signal: sig("b"), Tier: model.TierCore},
		{Signal: sig("c"), Tier: model.TierAdjacent},
	}
	grouped := ByTier(assignments)
	assert.Len(t, grouped[model.TierCore], 2)
	assert.Len(t, grouped[model.TierAdjacent], 1)
}
