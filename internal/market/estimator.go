package market

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/jsonx"
	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/resilience"
)

// ErrEmptyHypothesis is returned before any external call is made.
var ErrEmptyHypothesis = eris.New("market: hypothesis text is empty")

// Estimator sizes the market for a hypothesis. The completion call is retried
// with backoff on transient failure only; a malformed response is
// deterministic and surfaces as a ParseError without retry.
type Estimator struct {
	completer Completer
	tracker   UsageTracker
	retry     resilience.RetryConfig
	circuit   *resilience.Circuit
	cfg       config.AnalysisConfig
}

// NewEstimator creates an estimator. tracker may be nil when cost tracking is
// not wanted.
func NewEstimator(completer Completer, tracker UsageTracker, cfg config.AnalysisConfig) *Estimator {
	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = resilience.IsTransient
	return &Estimator{
		completer: completer,
		tracker:   tracker,
		retry:     retry,
		circuit:   resilience.NewCircuit(resilience.CircuitConfig{}),
		cfg:       cfg,
	}
}

type completion struct {
	text  string
	usage Usage
}

// Estimate produces a sizing result for the hypothesis. Geography, price, and
// MSC fall back to configured defaults when unset.
func (e *Estimator) Estimate(ctx context.Context, hyp model.Hypothesis) (*model.MarketSizingResult, error) {
	if hyp.Text == "" {
		return nil, ErrEmptyHypothesis
	}

	geography := hyp.Geography
	if geography == "" {
		geography = e.cfg.DefaultGeography
	}
	price := hyp.Price
	if price <= 0 {
		price = e.cfg.DefaultPrice
	}
	msc := hyp.MSC
	if msc <= 0 {
		msc = e.cfg.DefaultMSC
	}

	prompt := buildPrompt(hyp.Text, geography, price, msc)

	// Only the transport is retried. Parsing happens outside the retry loop
	// so a malformed response fails exactly once.
	result, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (completion, error) {
		return resilience.ExecuteVal(ctx, e.circuit, func(ctx context.Context) (completion, error) {
			text, usage, err := e.completer.Complete(ctx, prompt)
			if err != nil {
				return completion{}, err
			}
			return completion{text: text, usage: usage}, nil
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "market: completion call")
	}

	if e.tracker != nil {
		e.tracker.Record("market_sizing", result.usage)
	}

	sizing, err := parseSizing(result.text, price, msc)
	if err != nil {
		return nil, err
	}

	zap.L().Info("market: sizing estimated",
		zap.String("geography", geography),
		zap.Float64("price", price),
		zap.Float64("msc", msc),
		zap.Float64("tam", sizing.TAM.Value),
		zap.Float64("som", sizing.SOM.Value),
		zap.Float64("score", sizing.Score),
		zap.Float64("penetration_required", sizing.MSC.PenetrationRequired),
		zap.String("achievability", string(sizing.MSC.Achievability)),
	)

	return sizing, nil
}

type sizingResponse struct {
	TAM                 *model.MarketBand `json:"tam"`
	SAM                 *model.MarketBand `json:"sam"`
	SOM                 *model.MarketBand `json:"som"`
	CustomersNeeded     float64           `json:"customers_needed"`
	PenetrationRequired float64           `json:"penetration_required"`
	MarketScore         float64           `json:"market_score"`
	Achievability       string            `json:"achievability"`
	Verdict             string            `json:"verdict"`
	Suggestions         []string          `json:"suggestions"`
	Confidence          string            `json:"confidence"`
}

var validAchievability = map[model.Achievability]struct{}{
	model.HighlyAchievable: {},
	model.Achievable:       {},
	model.Challenging:      {},
	model.Unrealistic:      {},
	model.NearImpossible:   {},
}

var validConfidence = map[model.MarketConfidence]struct{}{
	model.ConfidenceHigh:    {},
	model.ConfidenceMedium:  {},
	model.ConfidenceLow:     {},
	model.ConfidenceVeryLow: {},
}

// parseSizing extracts and validates the sizing JSON. The derived ratios
// (customers needed, penetration) are recomputed locally from price and MSC
// so the invariants hold regardless of the backend's arithmetic.
func parseSizing(text string, price, msc float64) (*model.MarketSizingResult, error) {
	obj, err := jsonx.ExtractObject(text)
	if err != nil {
		return nil, parseErrorf(text, "no JSON object in response")
	}

	var resp sizingResponse
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return nil, parseErrorf(obj, "invalid JSON: %v", err)
	}

	if resp.TAM == nil || resp.SAM == nil || resp.SOM == nil {
		return nil, parseErrorf(obj, "missing tam/sam/som")
	}
	if resp.SOM.Value <= 0 {
		return nil, parseErrorf(obj, "som value must be positive, got %v", resp.SOM.Value)
	}
	if resp.SOM.Value > resp.SAM.Value || resp.SAM.Value > resp.TAM.Value {
		return nil, parseErrorf(obj, "funnel not descending: tam=%v sam=%v som=%v",
			resp.TAM.Value, resp.SAM.Value, resp.SOM.Value)
	}

	achievability := model.Achievability(resp.Achievability)
	if _, ok := validAchievability[achievability]; !ok {
		return nil, parseErrorf(obj, "unknown achievability %q", resp.Achievability)
	}
	confidence := model.MarketConfidence(resp.Confidence)
	if _, ok := validConfidence[confidence]; !ok {
		return nil, parseErrorf(obj, "unknown confidence %q", resp.Confidence)
	}

	score := resp.MarketScore
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	customersNeeded := msc / (price * 12)
	penetrationPct := customersNeeded / resp.SOM.Value * 100

	return &model.MarketSizingResult{
		Score:      score,
		Confidence: confidence,
		TAM:        *resp.TAM,
		SAM:        *resp.SAM,
		SOM:        *resp.SOM,
		MSC: model.MSCAnalysis{
			CustomersNeeded:     customersNeeded,
			PenetrationRequired: penetrationPct,
			Verdict:             resp.Verdict,
			Achievability:       achievability,
		},
		Suggestions: resp.Suggestions,
	}, nil
}
