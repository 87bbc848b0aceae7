package cost

import (
	"sync"

	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/market"
	"github.com/foundersignal/validate-cli/internal/model"
)

// Tracker accumulates token usage and cost per pipeline phase. Safe for
// concurrent use; recording never fails.
type Tracker struct {
	calc *Calculator

	mu      sync.Mutex
	usage   model.TokenUsage
	byPhase map[string]float64
	queries int
}

// NewTracker creates a tracker over the given calculator.
func NewTracker(calc *Calculator) *Tracker {
	return &Tracker{
		calc:    calc,
		byPhase: make(map[string]float64),
	}
}

// AddClaude records usage from one Claude call or batch.
func (t *Tracker) AddClaude(phase, model string, isBatch bool, usage model.TokenUsage) {
	cost := t.calc.Claude(model, isBatch, usage)

	t.mu.Lock()
	t.usage.Add(usage)
	t.byPhase[phase] += cost
	t.mu.Unlock()

	zap.L().Debug("cost: claude usage recorded",
		zap.String("phase", phase),
		zap.String("model", model),
		zap.Bool("batch", isBatch),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
		zap.Float64("cost_usd", cost),
	)
}

// AddPerplexityQuery records one flat-rate Perplexity query.
func (t *Tracker) AddPerplexityQuery(phase string) {
	cost := t.calc.PerplexityQuery()

	t.mu.Lock()
	t.queries++
	t.byPhase[phase] += cost
	t.mu.Unlock()

	zap.L().Debug("cost: perplexity query recorded",
		zap.String("phase", phase),
		zap.Float64("cost_usd", cost),
	)
}

// Record implements market.UsageTracker, routing by provider.
func (t *Tracker) Record(phase string, usage market.Usage) {
	switch usage.Provider {
	case "perplexity":
		t.AddPerplexityQuery(phase)
	default:
		t.AddClaude(phase, usage.Model, false, model.TokenUsage{
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
		})
	}
}

// Total returns the accumulated cost in USD.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total float64
	for _, c := range t.byPhase {
		total += c
	}
	return total
}

// Usage returns the accumulated token usage.
func (t *Tracker) Usage() model.TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// ByPhase returns a copy of the per-phase cost breakdown.
func (t *Tracker) ByPhase() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, len(t.byPhase))
	for phase, c := range t.byPhase {
		out[phase] = c
	}
	return out
}

// LogSummary emits the run's cost breakdown at info level.
func (t *Tracker) LogSummary() {
	t.mu.Lock()
	fields := []zap.Field{
		zap.Int("input_tokens", t.usage.InputTokens),
		zap.Int("output_tokens", t.usage.OutputTokens),
		zap.Int("cache_creation_tokens", t.usage.CacheCreationTokens),
		zap.Int("cache_read_tokens", t.usage.CacheReadTokens),
		zap.Int("perplexity_queries", t.queries),
	}
	var total float64
	for phase, c := range t.byPhase {
		total += c
		fields = append(fields, zap.Float64("cost_"+phase, c))
	}
	t.mu.Unlock()

	fields = append(fields, zap.Float64("total_cost_usd", total))
	zap.L().Info("cost: run summary", fields...)
}
