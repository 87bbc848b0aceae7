package market

import "fmt"

// The prompt is fully specified so that any compliant backend produces
// comparable output: same schema, same rubric, same defaults. The
// trend-aggregation instruction ("weighted average based on the first
// keyword") is a known approximation carried over for comparability between
// runs; true per-keyword weighting would change historical scores.
const sizingPromptTemplate = `You are a market analyst performing a top-down Fermi estimation.

Hypothesis: %s
Geography: %s
Target monthly price: $%.2f
Annual revenue goal (minimum success criteria): $%.0f

Estimate the market funnel:
1. TAM: total annual spend on this problem category in the geography, in USD.
2. SAM: the portion addressable by a product at this price point and channel, in USD.
3. SOM: the number of customers realistically obtainable within 3 years.
Each level must be smaller than or equal to the previous one.

Then relate the revenue goal to the obtainable market:
- customers_needed = revenue goal / (monthly price * 12)
- penetration_required = customers_needed / som.value, as a 0-1 fraction

Score the market using the required SOM penetration:
penetration < 5%%   -> market_score 9,   achievability "highly_achievable"
penetration 5-10%%  -> market_score 7.5, achievability "achievable"
penetration 10-25%% -> market_score 5.5, achievability "challenging"
penetration 25-50%% -> market_score 3.5, achievability "unrealistic"
penetration > 50%%  -> market_score 1.5, achievability "near_impossible"

If you aggregate search-trend changes across keywords, use a weighted average
based on the first keyword.

Respond with exactly one JSON object, no other text:
{
  "tam": {"value": <annual USD>, "description": "<one line>", "reasoning": "<how you got it>"},
  "sam": {"value": <annual USD>, "description": "<one line>", "reasoning": "<how you got it>"},
  "som": {"value": <obtainable customer count>, "description": "<one line>", "reasoning": "<how you got it>"},
  "customers_needed": <number>,
  "penetration_required": <0-1 fraction>,
  "market_score": <0-10>,
  "achievability": "<highly_achievable|achievable|challenging|unrealistic|near_impossible>",
  "verdict": "<one sentence>",
  "suggestions": ["<string>", ...],
  "confidence": "<high|medium|low|very_low>"
}`

// buildPrompt renders the deterministic sizing prompt.
func buildPrompt(hypothesis, geography string, price, msc float64) string {
	return fmt.Sprintf(sizingPromptTemplate, hypothesis, geography, price, msc)
}
