package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"
)

const blockTypeText = "text"

// ProviderCompleter adapts a meridian-llm-go provider to Completer.
type ProviderCompleter struct {
	provider llmprovider.Provider
	model    string
	logger   *slog.Logger
}

// NewProviderCompleter wraps provider, sending every request to model.
func NewProviderCompleter(provider llmprovider.Provider, model string, logger *slog.Logger) (*ProviderCompleter, error) {
	if !provider.SupportsModel(model) {
		return nil, fmt.Errorf("model %q is not supported by provider %s", model, provider.Name().String())
	}
	return &ProviderCompleter{
		provider: provider,
		model:    model,
		logger:   logger,
	}, nil
}

// Complete sends a single user message and concatenates the text blocks of the reply.
func (c *ProviderCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{
			{
				Role: "user",
				Blocks: []*llmprovider.Block{
					{
						BlockType:   blockTypeText,
						Sequence:    0,
						TextContent: &prompt,
					},
				},
			},
		},
		Model: c.model,
		Params: &llmprovider.RequestParams{
			System: &system,
		},
	}

	start := time.Now()
	resp, err := c.provider.GenerateResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("provider failed to generate response: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType != blockTypeText || block.TextContent == nil {
			continue
		}
		b.WriteString(*block.TextContent)
	}

	c.logger.Info("LLM response generated",
		"provider", c.provider.Name().String(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
		"duration", time.Since(start),
	)

	if b.Len() == 0 {
		return "", fmt.Errorf("no text blocks in response")
	}
	return b.String(), nil
}
