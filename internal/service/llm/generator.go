// Package llm implements the AI backend used for one-pager generation and
// per-section refinement.
package llm

import (
	"context"
	"log/slog"
	"time"

	"onepager/internal/actions"
	"onepager/internal/domain"
	"onepager/internal/domain/services"
)

// Completer sends one prompt and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type generator struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGenerator creates a Generator that prompts a Completer.
func NewGenerator(completer Completer, timeout time.Duration, logger *slog.Logger) services.Generator {
	return &generator{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

// GenerateOnePager drafts every section from a title.
func (g *generator) GenerateOnePager(ctx context.Context, req *services.GenerateOnePagerRequest) (*services.GenerateOnePagerResponse, error) {
	text, err := g.complete(ctx, buildGeneratePrompt(req.Title))
	if err != nil {
		return nil, err
	}

	resp, err := parseGenerateResponse(text)
	if err != nil {
		g.logger.Warn("unusable generation response", "error", err, "response_length", len(text))
		return nil, &domain.UpstreamError{Message: "AI returned an unusable one-pager", Err: err}
	}

	g.logger.Info("one-pager generated", "fields", len(resp.Fields))
	return resp, nil
}

// Refine rewrites a single field. Summarize-type actions return bullet items.
func (g *generator) Refine(ctx context.Context, req *services.RefineRequest) (*services.RefineResponse, error) {
	text, err := g.complete(ctx, buildRefinePrompt(req))
	if err != nil {
		return nil, err
	}

	var resp *services.RefineResponse
	if actions.IsSummarize(req.SpecificAction) {
		resp, err = parseSummarizeResponse(text)
	} else {
		resp, err = parseRewriteResponse(text)
	}
	if err != nil {
		g.logger.Warn("unusable refine response", "action", req.SpecificAction, "error", err)
		return nil, &domain.UpstreamError{Message: "AI returned an unusable refinement", Err: err}
	}
	return resp, nil
}

func (g *generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		g.logger.Error("AI request failed", "error", err)
		return "", &domain.UpstreamError{Message: "AI backend request failed", Err: err}
	}
	return text, nil
}
