package model

// MarketConfidence grades how much the estimator trusts its own numbers.
type MarketConfidence string

const (
	ConfidenceHigh    MarketConfidence = "high"
	ConfidenceMedium  MarketConfidence = "medium"
	ConfidenceLow     MarketConfidence = "low"
	ConfidenceVeryLow MarketConfidence = "very_low"
)

// Achievability is the estimator's verdict on reaching the MSC target.
type Achievability string

const (
	HighlyAchievable Achievability = "highly_achievable"
	Achievable       Achievability = "achievable"
	Challenging      Achievability = "challenging"
	Unrealistic      Achievability = "unrealistic"
	NearImpossible   Achievability = "near_impossible"
)

// MarketBand is one level of the TAM/SAM/SOM funnel. TAM and SAM carry
// annual USD; SOM carries the obtainable customer count, which is the
// denominator of the penetration ratio.
type MarketBand struct {
	Value       float64 `json:"value"`
	Description string  `json:"description"`
	Reasoning   string  `json:"reasoning"`
}

// MSCAnalysis relates the minimum-success-criteria revenue target to the
// obtainable market.
type MSCAnalysis struct {
	CustomersNeeded     float64       `json:"customers_needed"`
	PenetrationRequired float64       `json:"penetration_required"` // percent of SOM
	Verdict             string        `json:"verdict"`
	Achievability       Achievability `json:"achievability"`
}

// MarketSizingResult is the immutable outcome of one market-sizing call for a
// hypothesis+geography+price combination. Invariant: 0 <= SOM <= SAM <= TAM.
type MarketSizingResult struct {
	Score       float64          `json:"score"` // 0-10
	Confidence  MarketConfidence `json:"confidence"`
	TAM         MarketBand       `json:"tam"`
	SAM         MarketBand       `json:"sam"`
	SOM         MarketBand       `json:"som"`
	MSC         MSCAnalysis      `json:"msc_analysis"`
	Suggestions []string         `json:"suggestions"`
}
