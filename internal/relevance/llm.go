package relevance

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/jsonx"
	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/pkg/anthropic"
)

const relevanceSystemPrompt = `You rate how relevant a piece of user evidence is to a product hypothesis.
Score on this scale:
1.0 = directly discusses the hypothesized problem, need, or product
0.5 = discusses the same product space or an adjacent workflow
0.2 = loosely related topic with a plausible connection
0.0 = unrelated
Respond with a valid JSON object: {"relevance": <0.0-1.0>}`

const relevanceUserPrompt = `Hypothesis: %s

Evidence (%s, %s):
%s`

const maxSignalChars = 2000

// LLMScorer rates relevance with Haiku. Small batches go through direct
// concurrent messages; larger ones use the Message Batches API for the batch
// discount.
type LLMScorer struct {
	client      anthropic.Client
	cfg         config.AnthropicConfig
	concurrency int
}

// NewLLMScorer creates an LLM-backed scorer.
func NewLLMScorer(client anthropic.Client, cfg config.AnthropicConfig, concurrency int) *LLMScorer {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &LLMScorer{client: client, cfg: cfg, concurrency: concurrency}
}

func (s *LLMScorer) ScoreSignals(ctx context.Context, hypothesis string, signals []model.Signal) ([]ScoredSignal, model.TokenUsage, error) {
	var usage model.TokenUsage
	if len(signals) == 0 {
		return nil, usage, nil
	}

	systemBlocks := anthropic.BuildCachedSystemBlocks(relevanceSystemPrompt)
	items := make([]anthropic.BatchRequestItem, len(signals))
	for i, sig := range signals {
		text := sig.Text()
		if len(text) > maxSignalChars {
			text = text[:maxSignalChars]
		}
		prompt := fmt.Sprintf(relevanceUserPrompt, hypothesis, sig.Source, sig.Community, text)
		items[i] = anthropic.BatchRequestItem{
			CustomID: fmt.Sprintf("relevance-%d", i),
			Params: anthropic.MessageRequest{
				Model:     s.cfg.HaikuModel,
				MaxTokens: 64,
				System:    systemBlocks,
				Messages: []anthropic.Message{
					{Role: "user", Content: prompt},
				},
			},
		}
	}

	threshold := s.cfg.SmallBatchThreshold
	if threshold <= 0 {
		threshold = 8
	}
	if s.cfg.NoBatch || len(items) <= threshold {
		return s.scoreDirect(ctx, signals, items, &usage)
	}
	return s.scoreBatch(ctx, signals, items, &usage)
}

func (s *LLMScorer) scoreDirect(ctx context.Context, signals []model.Signal, items []anthropic.BatchRequestItem, usage *model.TokenUsage) ([]ScoredSignal, model.TokenUsage, error) {
	out := make([]ScoredSignal, len(signals))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var mu sync.Mutex
	for i, item := range items {
		g.Go(func() error {
			resp, err := s.client.CreateMessage(gCtx, item.Params)
			if err != nil {
				out[i] = ScoredSignal{Signal: signals[i], Err: err}
				return nil
			}

			score, err := parseRelevance(resp.Text())
			out[i] = ScoredSignal{Signal: signals[i], Score: score, Err: err}

			mu.Lock()
			usage.Add(model.TokenUsage{
				InputTokens:         int(resp.Usage.InputTokens),
				OutputTokens:        int(resp.Usage.OutputTokens),
				CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
				CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out, *usage, nil
}

func (s *LLMScorer) scoreBatch(ctx context.Context, signals []model.Signal, items []anthropic.BatchRequestItem, usage *model.TokenUsage) ([]ScoredSignal, model.TokenUsage, error) {
	batch, err := s.client.CreateBatch(ctx, anthropic.BatchRequest{Requests: items})
	if err != nil {
		return nil, *usage, eris.Wrap(err, "relevance: create batch")
	}

	zap.L().Info("relevance: scoring batch submitted",
		zap.String("batch_id", batch.ID),
		zap.Int("signals", len(signals)),
	)

	batch, err = anthropic.PollBatch(ctx, s.client, batch.ID)
	if err != nil {
		return nil, *usage, eris.Wrap(err, "relevance: poll batch")
	}

	iter, err := s.client.GetBatchResults(ctx, batch.ID)
	if err != nil {
		return nil, *usage, eris.Wrap(err, "relevance: get batch results")
	}
	collected, err := anthropic.CollectBatchResults(iter)
	if err != nil {
		return nil, *usage, eris.Wrap(err, "relevance: collect batch results")
	}

	out := make([]ScoredSignal, len(signals))
	for i, sig := range signals {
		resp, ok := collected.Succeeded[fmt.Sprintf("relevance-%d", i)]
		if !ok {
			out[i] = ScoredSignal{Signal: sig, Err: eris.New("relevance: no batch result for signal")}
			continue
		}

		usage.Add(model.TokenUsage{
			InputTokens:         int(resp.Usage.InputTokens),
			OutputTokens:        int(resp.Usage.OutputTokens),
			CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
			CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
		})

		score, err := parseRelevance(resp.Text())
		out[i] = ScoredSignal{Signal: sig, Score: score, Err: err}
	}

	return out, *usage, nil
}

// parseRelevance extracts the relevance score from a model response, clamped
// to [0,1].
func parseRelevance(text string) (float64, error) {
	obj, err := jsonx.ExtractObject(text)
	if err != nil {
		return 0, eris.Wrap(err, "relevance: parse response")
	}

	var result struct {
		Relevance float64 `json:"relevance"`
	}
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return 0, eris.Wrap(err, "relevance: unmarshal response")
	}

	score := result.Relevance
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
