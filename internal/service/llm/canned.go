package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"onepager/internal/actions"
	"onepager/internal/domain/services"
)

// CannedGenerator answers from fixed templates without calling any model.
// Used in dev and whenever no provider is configured.
type CannedGenerator struct {
	catalog *actions.Catalog
	delay   time.Duration
	logger  *slog.Logger
}

// NewCannedGenerator creates an offline generator. delay simulates model latency.
func NewCannedGenerator(catalog *actions.Catalog, delay time.Duration, logger *slog.Logger) *CannedGenerator {
	return &CannedGenerator{
		catalog: catalog,
		delay:   delay,
		logger:  logger,
	}
}

var cannedSections = map[string]string{
	"Problem Statement": "Teams working on %s lose time to scattered tools and unclear ownership, which slows delivery and frustrates customers.",
	"Proposed Solution": "%s brings the workflow into a single, focused experience with sensible defaults and clear next steps.",
	"Target Audience":   "Product teams of 5 to 50 people who already feel the pain that %s addresses.",
	"Success Metrics":   "Weekly active teams, time to first value under 10 minutes, and a 20% lift in retention after launch of %s.",
	"Potential Risks":   "Adoption may stall if %s duplicates tools teams already pay for, and integration work could exceed estimates.",
	"Mitigation Plan":   "Ship import paths from existing tools early and run a closed beta of %s with three design partners.",
	"Timeline":          "Discovery in month one, beta of %s in month three, general availability in month five.",
}

// GenerateOnePager returns the standard sections filled in for the title.
func (g *CannedGenerator) GenerateOnePager(ctx context.Context, req *services.GenerateOnePagerRequest) (*services.GenerateOnePagerResponse, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Title)
	if subject == "" {
		subject = "this product"
	}

	fields := make([]services.LabeledValue, len(GeneratedSections))
	for i, label := range GeneratedSections {
		fields[i] = services.LabeledValue{
			Label: label,
			Value: fmt.Sprintf(cannedSections[label], subject),
		}
	}

	g.logger.Debug("canned one-pager generated", "fields", len(fields))
	return &services.GenerateOnePagerResponse{Fields: fields}, nil
}

// Refine returns the sample for known actions, a sentence split for
// summarize-type actions, and a quoted echo otherwise.
func (g *CannedGenerator) Refine(ctx context.Context, req *services.RefineRequest) (*services.RefineResponse, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	if actions.IsSummarize(req.SpecificAction) {
		return &services.RefineResponse{Items: splitSentences(req.TargetField.Value)}, nil
	}

	if sample, ok := g.catalog.Sample(req.SpecificAction); ok {
		return &services.RefineResponse{RefinedText: sample}, nil
	}

	return &services.RefineResponse{
		RefinedText: fmt.Sprintf("Here's a refined version of your content:\n\n\"%s\"", req.TargetField.Value),
	}, nil
}

func (g *CannedGenerator) wait(ctx context.Context) error {
	if g.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// splitSentences breaks text into trimmed sentences. Text without sentence
// punctuation becomes a single item.
func splitSentences(text string) []string {
	var items []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			items = append(items, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n':
			flush()
		}
	}
	flush()

	if len(items) == 0 {
		return []string{"No key points found."}
	}
	return items
}
