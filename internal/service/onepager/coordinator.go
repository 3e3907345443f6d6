package onepager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"onepager/internal/config"
	"onepager/internal/domain"
	models "onepager/internal/domain/models/onepager"
	"onepager/internal/domain/services"
	"onepager/internal/richtext"
)

const (
	aiKindRefine   = "refine"
	aiKindGenerate = "generate"
)

// RequestAction starts an AI refinement of one field. It returns once the
// task is registered; the suggestion shows up in a later view. A block with
// a task in flight rejects further requests with domain.ErrBlockBusy.
func (s *Session) RequestAction(blockID, action string, field models.Field) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.startTaskLocked(blockID, action, field)
	if err != nil {
		return nil, err
	}

	req := s.refineRequestLocked(blockID, action, field)
	go s.runTask(blockID, t, req)

	return s.viewLocked(), nil
}

// RunFollowUp consumes the block's follow-up offer and starts its action
// on the content field.
func (s *Session) RunFollowUp(blockID string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.followUps[blockID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("no follow-up offer for block %s", blockID)}
	}

	t, err := s.startTaskLocked(blockID, offer.Action, models.FieldContent)
	if err != nil {
		return nil, err
	}
	delete(s.followUps, blockID)

	req := s.refineRequestLocked(blockID, offer.Action, models.FieldContent)
	go s.runTask(blockID, t, req)

	return s.viewLocked(), nil
}

func (s *Session) startTaskLocked(blockID, action string, field models.Field) (*task, error) {
	b, ok := s.doc.Block(blockID)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("block %s not found", blockID)}
	}
	if b.IsTitle() && field != models.FieldTitle {
		return nil, fmt.Errorf("%w: the title block only supports title actions", domain.ErrValidation)
	}
	if _, busy := s.tasks[blockID]; busy {
		return nil, domain.ErrBlockBusy
	}

	t := &task{action: action, field: field, done: make(chan struct{})}
	s.tasks[blockID] = t
	delete(s.failures, blockID)

	s.logger.Info("AI action requested", "block_id", blockID, "action", action, "field", field)
	return t, nil
}

// refineRequestLocked shapes the request from stored values: the document
// title, every section's label and flattened content, and the target field.
func (s *Session) refineRequestLocked(blockID, action string, field models.Field) *services.RefineRequest {
	sections := s.doc.ContentBlocks()
	fields := make([]services.LabeledValue, len(sections))
	for i, b := range sections {
		fields[i] = services.LabeledValue{Label: b.Title, Value: richtext.Flatten(b.Content)}
	}

	b, _ := s.doc.Block(blockID)
	target := services.LabeledValue{Label: b.Title}
	switch {
	case b.IsTitle():
		target = services.LabeledValue{Label: "Title", Value: b.Title}
	case field == models.FieldTitle:
		target.Value = b.Title
	default:
		target.Value = richtext.Flatten(b.Content)
	}

	return &services.RefineRequest{
		DocumentContext: services.DocumentContext{Title: s.doc.Title(), Fields: fields},
		TargetField:     target,
		SpecificAction:  action,
	}
}

// runTask calls the AI backend and applies the result by block id against
// the current document.
func (s *Session) runTask(blockID string, t *task, req *services.RefineRequest) {
	defer close(t.done)

	start := time.Now()
	resp, err := s.generator.Refine(s.baseCtx, req)
	s.metrics.ObserveAI(aiKindRefine, time.Since(start), err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.tasks[blockID]; !ok || current != t {
		s.metrics.SuggestionsResolved.WithLabelValues("dropped").Inc()
		s.logger.Debug("AI result dropped, task no longer registered", "block_id", blockID, "action", t.action)
		return
	}
	delete(s.tasks, blockID)

	if err != nil {
		s.failures[blockID] = userMessage(err)
		s.logger.Warn("AI action failed", "block_id", blockID, "action", t.action, "error", err)
		return
	}
	if _, ok := s.doc.Block(blockID); !ok {
		s.metrics.SuggestionsResolved.WithLabelValues("dropped").Inc()
		return
	}

	sg, err := toSuggestion(blockID, t, resp)
	if err != nil {
		s.failures[blockID] = userMessage(err)
		s.logger.Warn("AI action returned nothing usable", "block_id", blockID, "action", t.action, "error", err)
		return
	}

	s.suggestions[blockID] = sg
	s.logger.Info("suggestion proposed", "block_id", blockID, "action", t.action, "field", t.field)
}

// toSuggestion converts a refine response into a replacement value of the
// target field's type. Bullet items become a bullet-list tree.
func toSuggestion(blockID string, t *task, resp *services.RefineResponse) (models.Suggestion, error) {
	sg := models.Suggestion{BlockID: blockID, Field: t.field, Action: t.action}

	items := nonBlank(resp.Items)

	switch t.field {
	case models.FieldTitle:
		text := strings.TrimSpace(resp.RefinedText)
		if text == "" && len(items) > 0 {
			text = strings.Join(items, "; ")
		}
		if text == "" {
			return sg, errors.New("empty title suggestion")
		}
		sg.Text = text

	default:
		var content richtext.Node
		switch {
		case len(items) > 0:
			content = richtext.BulletList(items)
		case strings.TrimSpace(resp.RefinedText) != "":
			content = richtext.FromPlainText(strings.TrimSpace(resp.RefinedText))
		default:
			return sg, errors.New("empty content suggestion")
		}
		sg.Content = &content
	}
	return sg, nil
}

// nonBlank returns the trimmed items that have text.
func nonBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Generate replaces every section with an AI draft. The title block and
// its id are kept; every overlay and in-flight task is discarded. Errors
// leave the document untouched.
func (s *Session) Generate(ctx context.Context, title string) (*models.View, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, &domain.ConflictError{Message: "a one-pager is already being generated", ResourceType: "document"}
	}
	if strings.TrimSpace(title) == "" {
		title = s.doc.Title()
	}
	if strings.TrimSpace(title) == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a title is required to generate a one-pager", domain.ErrValidation)
	}
	s.generating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	s.logger.Info("generating one-pager", "title", title)

	start := time.Now()
	resp, err := s.generator.GenerateOnePager(ctx, &services.GenerateOnePagerRequest{Title: title})
	s.metrics.ObserveAI(aiKindGenerate, time.Since(start), err)
	if err != nil {
		s.logger.Error("one-pager generation failed", "error", err)
		if !errors.Is(err, domain.ErrUpstream) {
			err = &domain.UpstreamError{Message: "AI backend request failed", Err: err}
		}
		return nil, err
	}

	fields := resp.Fields
	if len(fields) > config.MaxBlocks-1 {
		fields = fields[:config.MaxBlocks-1]
	}
	if len(fields) == 0 {
		return nil, &domain.UpstreamError{Message: "AI returned an empty one-pager", Err: errors.New("no fields")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	titleBlock := s.doc.Blocks[0]
	titleBlock.Title = title

	blocks := make([]models.Block, 0, len(fields)+1)
	blocks = append(blocks, titleBlock)
	for _, f := range fields {
		blocks = append(blocks, models.NewSection(f.Label, f.Value))
	}

	s.doc.Blocks = blocks
	s.suggestions = make(map[string]models.Suggestion)
	s.followUps = make(map[string]models.FollowUpOffer)
	s.tasks = make(map[string]*task)
	s.failures = make(map[string]string)
	s.touchLocked()

	s.logger.Info("one-pager generated", "sections", len(fields))
	return s.viewLocked(), nil
}

// userMessage is the notice shown next to a block whose AI action failed.
func userMessage(err error) string {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The AI took too long to respond. Please try again."
	}
	return "The AI could not complete this action. Please try again."
}

// waitTask blocks until the block's current task completes or ctx ends.
// Returns immediately when no task is registered.
func (s *Session) waitTask(ctx context.Context, blockID string) error {
	s.mu.Lock()
	t, ok := s.tasks[blockID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
