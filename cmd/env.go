package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/analysis"
	"github.com/foundersignal/validate-cli/internal/market"
	"github.com/foundersignal/validate-cli/internal/relevance"
	"github.com/foundersignal/validate-cli/internal/store"
	"github.com/foundersignal/validate-cli/internal/themes"
	anthropicpkg "github.com/foundersignal/validate-cli/pkg/anthropic"
	"github.com/foundersignal/validate-cli/pkg/notion"
	"github.com/foundersignal/validate-cli/pkg/perplexity"
)

// pipelineEnv holds the initialized store, clients, and pipeline shared by
// the analyze and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *analysis.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initScorer picks the relevance scorer: the LLM scorer when an Anthropic key
// is configured, the offline keyword scorer otherwise.
func initScorer() relevance.Scorer {
	if cfg.Anthropic.Key == "" {
		zap.L().Warn("VALIDATE_ANTHROPIC_KEY not set, using offline keyword scorer")
		return relevance.NewKeywordScorer()
	}
	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	return relevance.NewLLMScorer(client, cfg.Anthropic, cfg.Analysis.ScorerConcurrency)
}

// initCompleter picks the market-sizing backend: Anthropic when configured,
// Perplexity as the alternative.
func initCompleter() (market.Completer, error) {
	if cfg.Anthropic.Key != "" {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		return market.NewAnthropicCompleter(client, cfg.Anthropic.SonnetModel), nil
	}
	if cfg.Perplexity.Key != "" {
		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		return market.NewPerplexityCompleter(client, cfg.Perplexity.Model), nil
	}
	return nil, eris.New("no completion backend configured: set VALIDATE_ANTHROPIC_KEY or VALIDATE_PERPLEXITY_KEY")
}

// initPipeline sets up the store, all API clients, and the analysis pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	completer, err := initCompleter()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	lex, err := themes.LoadLexicon(cfg.Analysis.LexiconPath)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load lexicon")
	}

	var notionClient notion.Client
	if cfg.Notion.Token != "" && cfg.Notion.VerdictDB != "" {
		notionClient = notion.NewClient(cfg.Notion.Token)
		zap.L().Info("notion verdict publishing enabled")
	}

	p := analysis.New(analysis.Options{
		Store:     st,
		Scorer:    initScorer(),
		Completer: completer,
		Notion:    notionClient,
		NotionDB:  cfg.Notion.VerdictDB,
		Lexicon:   lex,
		Analysis:  cfg.Analysis,
		Anthropic: cfg.Anthropic,
		Pricing:   cfg.Pricing,
	})

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
