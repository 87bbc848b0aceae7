// Package market produces TAM/SAM/SOM estimates and an MSC achievability
// verdict by delegating Fermi reasoning to a text-completion backend.
package market

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/foundersignal/validate-cli/pkg/anthropic"
	"github.com/foundersignal/validate-cli/pkg/perplexity"
)

// Usage reports token consumption of one completion call for cost tracking.
type Usage struct {
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Completer is a text-completion backend. The estimator only needs free text
// expected to contain one JSON object; any compliant backend is acceptable.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, Usage, error)
}

// UsageTracker receives per-call usage records. Recording is best-effort and
// must never block or fail the estimate.
type UsageTracker interface {
	Record(phase string, usage Usage)
}

// AnthropicCompleter runs completions through the Anthropic Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompleter creates a completer using the given model.
func NewAnthropicCompleter(client anthropic.Client, model string) *AnthropicCompleter {
	return &AnthropicCompleter{client: client, model: model}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	temp := 0.2
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   2048,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", Usage{}, err
	}

	usage := Usage{
		Provider:     "anthropic",
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}
	return resp.Text(), usage, nil
}

// PerplexityCompleter runs completions through the Perplexity chat API.
type PerplexityCompleter struct {
	client perplexity.Client
	model  string
}

// NewPerplexityCompleter creates a completer using the given model.
func NewPerplexityCompleter(client perplexity.Client, model string) *PerplexityCompleter {
	return &PerplexityCompleter{client: client, model: model}
}

func (c *PerplexityCompleter) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	temp := 0.2
	resp, err := c.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:       c.model,
		Temperature: &temp,
		Messages: []perplexity.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, eris.New("market: completion returned no choices")
	}

	usage := Usage{
		Provider:     "perplexity",
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}
