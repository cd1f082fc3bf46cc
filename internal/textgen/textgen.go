// Package textgen abstracts the text-generation providers behind a
// single prompt-in, text-out interface.
package textgen

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/aisleworks/vendor-research/pkg/anthropic"
	"github.com/aisleworks/vendor-research/pkg/perplexity"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type anthropicGen struct {
	client anthropic.Client
	model  string
}

// NewAnthropic returns a Generator backed by the Anthropic messages API.
func NewAnthropic(client anthropic.Client, model string) Generator {
	return &anthropicGen{client: client, model: model}
}

func (g *anthropicGen) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: 1024,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "textgen: anthropic generate")
	}
	resp.Usage.LogCost(g.model, "rank")
	return resp.Text(), nil
}

type perplexityGen struct {
	client perplexity.Client
	model  string
}

// NewPerplexity returns a Generator backed by the Perplexity
// chat-completions API.
func NewPerplexity(client perplexity.Client, model string) Generator {
	return &perplexityGen{client: client, model: model}
}

func (g *perplexityGen) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: g.model,
		Messages: []perplexity.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "textgen: perplexity generate")
	}
	return resp.Text(), nil
}
