// Package cost computes and accumulates API spend across an analysis run.
package cost

import (
	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
)

// Calculator computes USD costs for API usage from configured rates.
type Calculator struct {
	rates config.PricingConfig
}

// NewCalculator creates a Calculator. Missing Anthropic rates fall back to
// the built-in defaults.
func NewCalculator(rates config.PricingConfig) *Calculator {
	if len(rates.Anthropic) == 0 {
		rates.Anthropic = DefaultRates().Anthropic
	}
	if rates.Perplexity.PerQuery == 0 {
		rates.Perplexity = DefaultRates().Perplexity
	}
	return &Calculator{rates: rates}
}

// Claude computes the cost of one Claude call. Unknown models cost zero
// rather than failing; cost tracking must never block an analysis.
func (c *Calculator) Claude(model string, isBatch bool, usage model.TokenUsage) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}

	batchMul := 1.0
	if isBatch && rate.BatchDiscount > 0 {
		batchMul = rate.BatchDiscount
	}

	inCost := (float64(usage.InputTokens) / 1e6) * rate.Input * batchMul
	outCost := (float64(usage.OutputTokens) / 1e6) * rate.Output * batchMul
	cwCost := (float64(usage.CacheCreationTokens) / 1e6) * rate.Input * rate.CacheWriteMul * batchMul
	crCost := (float64(usage.CacheReadTokens) / 1e6) * rate.Input * rate.CacheReadMul * batchMul

	return inCost + outCost + cwCost + crCost
}

// PerplexityQuery returns the flat cost per Perplexity query.
func (c *Calculator) PerplexityQuery() float64 {
	return c.rates.Perplexity.PerQuery
}

// DefaultRates returns the built-in pricing rates.
func DefaultRates() config.PricingConfig {
	return config.PricingConfig{
		Anthropic: map[string]config.ModelPricing{
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00,
				BatchDiscount: 0.5, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
		},
		Perplexity: config.PerplexityPricing{PerQuery: 0.005},
	}
}
