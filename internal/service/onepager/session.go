package onepager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"onepager/internal/actions"
	"onepager/internal/config"
	"onepager/internal/domain"
	models "onepager/internal/domain/models/onepager"
	"onepager/internal/domain/services"
	"onepager/internal/metrics"
	"onepager/internal/richtext"
	"onepager/internal/service/autosave"
)

// task is an in-flight AI action for one block. A completion whose task is
// no longer registered for its block is dropped.
type task struct {
	action string
	field  models.Field
	done   chan struct{}
}

// Session owns one principal's document, its suggestion overlays and the
// AI tasks running against it. All state is guarded by mu; AI calls and
// saves run without holding it.
type Session struct {
	principal models.Principal
	analyzer  services.ContentAnalyzer
	generator services.Generator
	catalog   *actions.Catalog
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// baseCtx outlives requests; AI tasks run under it
	baseCtx context.Context
	saver   *autosave.Scheduler

	mu          sync.Mutex
	doc         models.Document
	recordID    string
	createdAt   time.Time
	suggestions map[string]models.Suggestion
	followUps   map[string]models.FollowUpOffer
	tasks       map[string]*task
	failures    map[string]string
	generating  bool

	snapshot models.Snapshot
	findings []models.Finding
	analyzed bool
}

type sessionDeps struct {
	analyzer  services.ContentAnalyzer
	generator services.Generator
	catalog   *actions.Catalog
	metrics   *metrics.Metrics
	logger    *slog.Logger
	baseCtx   context.Context
	debounce  time.Duration
	save      func(ctx context.Context, p models.Principal, rec *models.Record) error
}

func newSession(p models.Principal, rec *models.Record, deps sessionDeps) *Session {
	s := &Session{
		principal:   p,
		analyzer:    deps.analyzer,
		generator:   deps.generator,
		catalog:     deps.catalog,
		metrics:     deps.metrics,
		logger:      deps.logger.With("principal", p.Key()),
		baseCtx:     deps.baseCtx,
		suggestions: make(map[string]models.Suggestion),
		followUps:   make(map[string]models.FollowUpOffer),
		tasks:       make(map[string]*task),
		failures:    make(map[string]string),
	}
	s.restore(rec)

	if deps.save != nil {
		s.saver = autosave.New(deps.debounce, func(ctx context.Context) error {
			start := time.Now()
			err := deps.save(ctx, p, s.record())
			s.metrics.ObserveSave(time.Since(start), err)
			return err
		}, s.logger)
	}

	s.refreshFindingsLocked()
	return s
}

// restore turns a stored record into the live document.
func (s *Session) restore(rec *models.Record) {
	s.recordID = rec.ID
	s.createdAt = rec.CreatedAt

	blocks := make([]models.Block, 0, len(rec.Fields)+1)
	blocks = append(blocks, models.Block{
		ID:      models.TitleBlockID,
		Title:   rec.Title,
		Content: richtext.Normalize(richtext.Node{}),
	})
	for _, f := range rec.Fields {
		if f.ID == models.TitleBlockID {
			continue
		}
		blocks = append(blocks, models.Block{
			ID:      f.ID,
			Title:   f.Title,
			Content: richtext.Normalize(f.Content),
		})
	}

	s.doc = models.Document{Blocks: blocks, UpdatedAt: rec.UpdatedAt}
	if rec.ID != "" {
		id := rec.ID
		s.doc.ID = &id
	}
}

// record builds the persisted shape from the stored (never overlaid) blocks.
func (s *Session) record() *models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections := s.doc.ContentBlocks()
	fields := make([]models.FieldRecord, len(sections))
	for i, b := range sections {
		fields[i] = models.FieldRecord{
			ID:      b.ID,
			Title:   b.Title,
			Content: b.Content.Clone(),
		}
	}

	return &models.Record{
		ID:        s.recordID,
		UserID:    s.principal.UserID,
		Title:     s.doc.Title(),
		Fields:    fields,
		CreatedAt: s.createdAt,
		UpdatedAt: s.doc.UpdatedAt,
	}
}

// View returns the derived view of the session.
func (s *Session) View() *models.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() *models.View {
	view := &models.View{
		ID:        s.doc.ID,
		Title:     s.doc.Title(),
		Blocks:    make([]models.BlockView, len(s.doc.Blocks)),
		Loading:   make([]string, 0, len(s.tasks)),
		Findings:  s.findings,
		UpdatedAt: s.doc.UpdatedAt,
	}

	for i, b := range s.doc.Blocks {
		var suggestion *models.Suggestion
		if sg, ok := s.suggestions[b.ID]; ok {
			suggestion = &sg
		}
		bv := models.DisplayBlock(b, suggestion)
		if _, ok := s.tasks[b.ID]; ok {
			bv.State = models.StatePending
			view.Loading = append(view.Loading, b.ID)
		}
		if offer, ok := s.followUps[b.ID]; ok {
			bv.FollowUp = &offer
		}
		view.Blocks[i] = bv
	}

	if len(s.failures) > 0 {
		view.Errors = make(map[string]string, len(s.failures))
		for id, msg := range s.failures {
			view.Errors[id] = msg
		}
	}
	if s.saver != nil {
		view.Saving = s.saver.Pending()
	}
	return view
}

// touchLocked records a persisted mutation: bumps the timestamp, refreshes
// findings and schedules a save.
func (s *Session) touchLocked() {
	s.doc.UpdatedAt = time.Now()
	s.refreshFindingsLocked()
	if s.saver != nil {
		s.saver.Schedule()
	}
}

// refreshFindingsLocked reruns the analyzer only when the flattened
// snapshot changed.
func (s *Session) refreshFindingsLocked() {
	snapshot := s.snapshotLocked()
	if s.analyzed && snapshot.Equal(s.snapshot) {
		return
	}
	s.snapshot = snapshot
	s.findings = s.analyzer.Analyze(snapshot)
	s.analyzed = true
	s.metrics.AnalysisRuns.Inc()
}

func (s *Session) snapshotLocked() models.Snapshot {
	sections := s.doc.ContentBlocks()
	snapshot := models.Snapshot{
		Title:  s.doc.Title(),
		Blocks: make([]models.SnapshotBlock, len(sections)),
	}
	for i, b := range sections {
		snapshot.Blocks[i] = models.SnapshotBlock{
			ID:      b.ID,
			Type:    b.Title,
			Content: richtext.Flatten(b.Content),
		}
	}
	return snapshot
}

// forgetBlockLocked drops every overlay and task keyed by id.
func (s *Session) forgetBlockLocked(id string) {
	delete(s.suggestions, id)
	delete(s.followUps, id)
	delete(s.tasks, id)
	delete(s.failures, id)
}

// InsertAfter adds an empty block after afterID. Unknown ids are a no-op.
func (s *Session) InsertAfter(afterID string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.doc.Blocks) >= config.MaxBlocks {
		return nil, fmt.Errorf("%w: a one-pager holds at most %d blocks", domain.ErrValidation, config.MaxBlocks)
	}

	nb := models.NewBlock()
	blocks, ok := insertAfter(s.doc.Blocks, afterID, nb)
	if !ok {
		s.logger.Debug("insert after unknown block ignored", "block_id", afterID)
		return s.viewLocked(), nil
	}

	s.doc.Blocks = blocks
	s.touchLocked()
	s.logger.Debug("block inserted", "block_id", nb.ID, "after", afterID)
	return s.viewLocked(), nil
}

// DeleteBlock removes a block together with its suggestion, follow-up offer
// and in-flight task. Deleting the title or the last section is a no-op.
func (s *Session) DeleteBlock(id string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, ok := deleteBlock(s.doc.Blocks, id)
	if !ok {
		s.logger.Debug("delete refused", "block_id", id)
		return s.viewLocked(), nil
	}

	s.doc.Blocks = blocks
	s.forgetBlockLocked(id)
	s.touchLocked()
	s.logger.Debug("block deleted", "block_id", id)
	return s.viewLocked(), nil
}

// Reorder moves activeID to overID's index. Moves touching the title are a no-op.
func (s *Session) Reorder(activeID, overID string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, ok := reorder(s.doc.Blocks, activeID, overID)
	if !ok {
		return s.viewLocked(), nil
	}

	s.doc.Blocks = blocks
	s.touchLocked()
	return s.viewLocked(), nil
}

// UpdateBlock overwrites the given fields. A pending suggestion on the
// block is discarded before the edit applies.
func (s *Session) UpdateBlock(id string, title *string, content *richtext.Node) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.doc.Block(id)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("block %s not found", id)}
	}
	if content != nil && b.IsTitle() {
		return nil, fmt.Errorf("%w: the title block has no content", domain.ErrValidation)
	}

	if _, had := s.suggestions[id]; had {
		delete(s.suggestions, id)
		s.metrics.SuggestionsResolved.WithLabelValues("superseded").Inc()
		s.logger.Debug("suggestion discarded by edit", "block_id", id)
	}

	if title != nil {
		b.Title = *title
	}
	if content != nil {
		b.Content = richtext.Normalize(content.Clone())
	}

	s.doc.Blocks, _ = replaceBlock(s.doc.Blocks, b)
	s.touchLocked()
	return s.viewLocked(), nil
}

// UpdateTitle sets the title block's text.
func (s *Session) UpdateTitle(title string) (*models.View, error) {
	return s.UpdateBlock(models.TitleBlockID, &title, nil)
}

// Accept replaces the targeted field with the proposed value. Accepting
// long content arms a follow-up offer for the block.
func (s *Session) Accept(id string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.suggestions[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("no suggestion for block %s", id)}
	}
	b, ok := s.doc.Block(id)
	if !ok {
		delete(s.suggestions, id)
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("block %s not found", id)}
	}

	switch sg.Field {
	case models.FieldTitle:
		b.Title = sg.Text
	case models.FieldContent:
		if sg.Content != nil {
			b.Content = sg.Content.Clone()
		}
	}
	delete(s.suggestions, id)
	s.doc.Blocks, _ = replaceBlock(s.doc.Blocks, b)

	if s.shouldOfferFollowUp(sg, b) {
		s.followUps[id] = models.FollowUpOffer{BlockID: id, Action: s.catalog.FollowUpAction()}
		s.logger.Debug("follow-up offered", "block_id", id)
	}

	s.metrics.SuggestionsResolved.WithLabelValues("accepted").Inc()
	s.touchLocked()
	return s.viewLocked(), nil
}

// shouldOfferFollowUp arms the summarize offer after accepting long content.
// Accepting a summary never re-arms it.
func (s *Session) shouldOfferFollowUp(sg models.Suggestion, b models.Block) bool {
	if sg.Field != models.FieldContent || actions.IsSummarize(sg.Action) {
		return false
	}
	return utf8.RuneCountInString(richtext.Flatten(b.Content)) > config.FollowUpThreshold
}

// Reject discards the suggestion without touching the stored field.
func (s *Session) Reject(id string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suggestions[id]; !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("no suggestion for block %s", id)}
	}
	delete(s.suggestions, id)
	s.metrics.SuggestionsResolved.WithLabelValues("rejected").Inc()
	return s.viewLocked(), nil
}

// DismissFollowUp drops the follow-up offer. Idempotent.
func (s *Session) DismissFollowUp(id string) (*models.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.followUps, id)
	return s.viewLocked(), nil
}

// Actions lists the refine actions for a block.
func (s *Session) Actions(id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.doc.Block(id)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("block %s not found", id)}
	}
	return s.catalog.ActionsForBlock(b), nil
}

// Markdown renders the stored document.
func (s *Session) Markdown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return renderMarkdown(s.doc)
}

// busy reports whether an AI call is in flight for this session.
func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks) > 0 || s.generating
}

// Close flushes the pending save and refuses further scheduling.
func (s *Session) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Stop(ctx)
}
