// Package analysis orchestrates a full validation run: gate, classify,
// extract themes, size the market, aggregate the verdict, persist.
package analysis

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/cost"
	"github.com/foundersignal/validate-cli/internal/gate"
	"github.com/foundersignal/validate-cli/internal/market"
	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/relevance"
	"github.com/foundersignal/validate-cli/internal/store"
	"github.com/foundersignal/validate-cli/internal/themes"
	"github.com/foundersignal/validate-cli/internal/verdict"
	"github.com/foundersignal/validate-cli/pkg/notion"
)

// Options carries the pipeline's dependencies.
type Options struct {
	Store     store.Store
	Scorer    relevance.Scorer
	Completer market.Completer
	Notion    notion.Client // optional verdict publishing
	NotionDB  string
	Lexicon   *themes.Lexicon // nil means the built-in lexicon
	Analysis  config.AnalysisConfig
	Anthropic config.AnthropicConfig
	Pricing   config.PricingConfig
}

// Pipeline runs the validation phases for one hypothesis.
type Pipeline struct {
	store      store.Store
	scorer     relevance.Scorer
	completer  market.Completer
	notion     notion.Client
	notionDB   string
	extractor  *themes.Extractor
	aggregator *verdict.Aggregator
	calc       *cost.Calculator
	cfg        config.AnalysisConfig
	anthropic  config.AnthropicConfig
}

// New creates a pipeline with all dependencies.
func New(opts Options) *Pipeline {
	lex := opts.Lexicon
	if lex == nil {
		lex = themes.DefaultLexicon()
	}
	return &Pipeline{
		store:      opts.Store,
		scorer:     opts.Scorer,
		completer:  opts.Completer,
		notion:     opts.Notion,
		notionDB:   opts.NotionDB,
		extractor:  themes.NewExtractor(lex),
		aggregator: verdict.NewAggregator(opts.Analysis),
		calc:       cost.NewCalculator(opts.Pricing),
		cfg:        opts.Analysis,
		anthropic:  opts.Anthropic,
	}
}

// Run executes the scoring core over an in-memory signal batch. Market-sizing
// failure degrades the run to a partial result instead of failing it;
// classification failure is fatal because nothing downstream can proceed.
func (p *Pipeline) Run(ctx context.Context, hyp model.Hypothesis, signals []model.Signal) (*model.AnalysisResult, error) {
	log := zap.L().With(zap.String("hypothesis", hyp.Text))
	log.Info("analysis: starting run", zap.Int("signals", len(signals)))

	tracker := cost.NewTracker(p.calc)

	if hyp.Subject != "" {
		gated, err := gate.Apply(signals, hyp.Subject)
		if err != nil {
			return nil, eris.Wrap(err, "analysis: gate")
		}
		log.Info("analysis: gate applied",
			zap.String("core_name", gated.Stats.CoreName),
			zap.Int("before", gated.Stats.Before),
			zap.Int("after", gated.Stats.After),
		)
		signals = gated.Passed
	}

	classifier := relevance.NewClassifier(p.scorer, p.cfg)
	classified, err := classifier.Classify(ctx, hyp.Text, signals)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: classify")
	}

	threshold := p.anthropic.SmallBatchThreshold
	if threshold <= 0 {
		threshold = 8
	}
	usedBatch := !p.anthropic.NoBatch && len(signals) > threshold
	tracker.AddClaude("relevance", p.anthropic.HaikuModel, usedBatch, classified.Usage)

	analysisSet := relevance.AnalysisSet(classified.Assignments)
	byTier := relevance.ByTier(classified.Assignments)
	var adjacent []model.Signal
	for _, a := range byTier[model.TierAdjacent] {
		adjacent = append(adjacent, a.Signal)
	}

	// Themes and market sizing are independent; run them in parallel. Market
	// errors are captured, not propagated, so a sizing outage still yields a
	// partial verdict.
	var (
		extraction *model.ThemeExtraction
		marketRes  *model.MarketSizingResult
		marketErr  error
	)
	estimator := market.NewEstimator(p.completer, tracker, p.cfg)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		extraction = p.extractor.Extract(analysisSet, adjacent)
		return nil
	})
	g.Go(func() error {
		marketRes, marketErr = estimator.Estimate(gCtx, hyp)
		return nil
	})
	_ = g.Wait()

	dims := model.DimensionScores{
		Pain: painScore(classified.Metrics, extraction),
	}
	if marketErr == nil && marketRes != nil {
		score := marketRes.Score
		dims.Market = &score
	}

	score, missing, ok := p.aggregator.WeightedScore(dims)
	critical := marketRes != nil &&
		(marketRes.MSC.Achievability == model.Unrealistic || marketRes.MSC.Achievability == model.NearImpossible)

	result := &model.AnalysisResult{
		Score:      score,
		Message:    p.aggregator.ScoreToMessage(score, critical),
		Dimensions: dims,
		Missing:    missing,
		Metrics:    classified.Metrics,
		Market:     marketRes,
		Themes:     extraction,
		Usage:      tracker.Usage(),
		TotalCost:  tracker.Total(),
	}

	if marketErr != nil {
		result.Incomplete = true
		result.FailureNote = marketErr.Error()
		log.Warn("analysis: market sizing failed, result is partial", zap.Error(marketErr))
	}
	if !ok {
		result.Incomplete = true
		result.FailureNote = "no dimension produced a score"
	}

	tracker.LogSummary()
	log.Info("analysis: run finished",
		zap.Float64("score", result.Score),
		zap.String("level", string(result.Message.Level)),
		zap.Bool("incomplete", result.Incomplete),
		zap.Int("analysis_signals", classified.Metrics.AnalysisSignals()),
		zap.Int("pivot_potential", classified.Metrics.PivotPotential()),
		zap.Float64("total_cost_usd", result.TotalCost),
	)

	return result, nil
}

// RunJob loads a stored job, runs the pipeline on its signal batch, and
// persists the outcome. Verdict publishing to Notion is best-effort.
func (p *Pipeline) RunJob(ctx context.Context, jobID string) (*model.AnalysisResult, error) {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	signals, err := p.store.GetSignals(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := p.store.UpdateJobStatus(ctx, jobID, model.JobStatusRunning); err != nil {
		zap.L().Warn("analysis: failed to mark job running", zap.String("job_id", jobID), zap.Error(err))
	}

	result, err := p.Run(ctx, job.Hypothesis, signals)
	if err != nil {
		if statusErr := p.store.UpdateJobStatus(ctx, jobID, model.JobStatusFailed); statusErr != nil {
			zap.L().Warn("analysis: failed to mark job failed", zap.String("job_id", jobID), zap.Error(statusErr))
		}
		return nil, err
	}

	status := model.JobStatusComplete
	if result.Incomplete {
		status = model.JobStatusPartial
	}
	if err := p.store.UpdateJobResult(ctx, jobID, status, result); err != nil {
		return nil, eris.Wrap(err, "analysis: save result")
	}

	p.publishVerdict(ctx, job, status, result)

	return result, nil
}

func (p *Pipeline) publishVerdict(ctx context.Context, job *model.AnalysisJob, status model.JobStatus, result *model.AnalysisResult) {
	if p.notion == nil || p.notionDB == "" {
		return
	}
	published := *job
	published.Status = status
	published.Result = result
	if _, err := notion.PublishVerdict(ctx, p.notion, p.notionDB, published); err != nil {
		zap.L().Warn("analysis: verdict publish failed",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
}

// painScore derives the pain sub-score (0-10) from tier density and theme
// richness: how much of the scored corpus is core/strong evidence, and how
// much distress language and verbatim problem phrasing that evidence carries.
// Returns nil when no core or strong signals exist, so the dimension is
// reported missing rather than defaulted.
func painScore(m model.TieredMetrics, t *model.ThemeExtraction) *float64 {
	if m.Total == 0 || m.AnalysisSignals() == 0 || t == nil {
		return nil
	}

	density := float64(m.AnalysisSignals()) / float64(m.Total)
	problems := math.Min(1, float64(len(t.ProblemPhrases))/10)
	emotional := math.Min(1, float64(len(t.EmotionalLanguage))/8)

	s := 10 * (0.5*density + 0.3*problems + 0.2*emotional)
	if s > 10 {
		s = 10
	}
	return &s
}
