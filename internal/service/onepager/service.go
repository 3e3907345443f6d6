// Package onepager implements the one-pager editing session: the block
// model, the suggestion state machine, the AI action coordinator and the
// debounced persistence of each principal's document.
package onepager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"onepager/internal/actions"
	"onepager/internal/config"
	"onepager/internal/domain"
	models "onepager/internal/domain/models/onepager"
	"onepager/internal/domain/repositories"
	"onepager/internal/domain/services"
	"onepager/internal/metrics"
)

// Deps are the collaborators of the service. Users and Guests may be nil.
type Deps struct {
	Users     repositories.OnePagerRepository
	Guests    repositories.GuestRepository
	Analyzer  services.ContentAnalyzer
	Generator services.Generator
	Catalog   *actions.Catalog
	Metrics   *metrics.Metrics
	Debounce  time.Duration
	// IdleTimeout evicts sessions untouched for longer; zero keeps them
	// until shutdown.
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// sessionEntry lets concurrent first requests for a principal share one load.
type sessionEntry struct {
	ready    chan struct{}
	session  *Session
	err      error
	lastSeen time.Time
}

// onePagerService implements the OnePagerService interface
type onePagerService struct {
	deps   Deps
	store  *documentStore
	logger *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	now     func() time.Time
	closing sync.WaitGroup

	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	lastSweep time.Time
	closed    bool
}

// NewService creates the one-pager service
func NewService(deps Deps) services.OnePagerService {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &onePagerService{
		deps:     deps,
		store:    &documentStore{users: deps.Users, guests: deps.Guests},
		logger:   deps.Logger,
		baseCtx:  baseCtx,
		cancel:   cancel,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// session returns the principal's session, loading it on first access.
func (s *onePagerService) session(ctx context.Context, p models.Principal) (*Session, error) {
	if p.UserID == "" && p.GuestID == "" {
		return nil, &domain.UnauthorizedError{Message: "missing principal"}
	}
	key := p.Key()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("one-pager service is shutting down")
	}
	now := s.now()
	if entry, ok := s.sessions[key]; ok {
		entry.lastSeen = now
	}
	s.sweepLocked(now)
	if entry, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		select {
		case <-entry.ready:
			return entry.session, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	entry := &sessionEntry{ready: make(chan struct{}), lastSeen: now}
	s.sessions[key] = entry
	s.mu.Unlock()

	entry.session, entry.err = s.loadSession(ctx, p)
	if entry.err != nil {
		s.mu.Lock()
		delete(s.sessions, key)
		s.mu.Unlock()
	}
	close(entry.ready)

	return entry.session, entry.err
}

// sweepLocked drops sessions idle for longer than IdleTimeout and flushes
// them in the background. Sessions with AI work in flight are kept.
// Runs at most once per IdleTimeout. Caller holds s.mu.
func (s *onePagerService) sweepLocked(now time.Time) {
	idle := s.deps.IdleTimeout
	if idle <= 0 || now.Sub(s.lastSweep) < idle {
		return
	}
	s.lastSweep = now

	for key, entry := range s.sessions {
		select {
		case <-entry.ready:
		default:
			continue
		}
		if entry.session == nil || now.Sub(entry.lastSeen) <= idle || entry.session.busy() {
			continue
		}
		delete(s.sessions, key)
		s.deps.Metrics.Sessions.Dec()

		session := entry.session
		s.closing.Add(1)
		go func() {
			defer s.closing.Done()
			ctx, cancel := context.WithTimeout(s.baseCtx, 30*time.Second)
			defer cancel()
			if err := session.Close(ctx); err != nil {
				s.logger.Error("failed to flush idle session", "principal", key, "error", err)
				return
			}
			s.logger.Info("idle session evicted", "principal", key)
		}()
	}
}

func (s *onePagerService) loadSession(ctx context.Context, p models.Principal) (*Session, error) {
	rec, err := s.store.load(ctx, p)
	if err != nil {
		s.logger.Error("failed to load one-pager", "principal", p.Key(), "error", err)
		return nil, err
	}

	deps := sessionDeps{
		analyzer:  s.deps.Analyzer,
		generator: s.deps.Generator,
		catalog:   s.deps.Catalog,
		metrics:   s.deps.Metrics,
		logger:    s.logger,
		baseCtx:   s.baseCtx,
		debounce:  s.deps.Debounce,
	}
	if s.store.persistent(p) {
		deps.save = s.store.save
	}

	session := newSession(p, rec, deps)
	s.deps.Metrics.Sessions.Inc()
	s.logger.Info("session opened",
		"principal", p.Key(),
		"guest", p.IsGuest(),
		"sections", len(rec.Fields),
	)
	return session, nil
}

// View returns the current document view
func (s *onePagerService) View(ctx context.Context, p models.Principal) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.View(), nil
}

// UpdateTitle sets the document title
func (s *onePagerService) UpdateTitle(ctx context.Context, p models.Principal, req *services.UpdateTitleRequest) (*models.View, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxDocumentTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.UpdateTitle(req.Title)
}

// Generate replaces every section with an AI draft
func (s *onePagerService) Generate(ctx context.Context, p models.Principal, req *services.GenerateRequest) (*models.View, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxDocumentTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.Generate(ctx, strings.TrimSpace(req.Title))
}

// InsertAfter adds an empty block after blockID
func (s *onePagerService) InsertAfter(ctx context.Context, p models.Principal, blockID string) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.InsertAfter(blockID)
}

// DeleteBlock removes a block
func (s *onePagerService) DeleteBlock(ctx context.Context, p models.Principal, blockID string) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.DeleteBlock(blockID)
}

// Reorder moves a block
func (s *onePagerService) Reorder(ctx context.Context, p models.Principal, req *services.ReorderRequest) (*models.View, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ActiveID, validation.Required),
		validation.Field(&req.OverID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.Reorder(req.ActiveID, req.OverID)
}

// UpdateBlock edits a block
func (s *onePagerService) UpdateBlock(ctx context.Context, p models.Principal, blockID string, req *services.UpdateBlockRequest) (*models.View, error) {
	if req.Title == nil && req.Content == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxBlockTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.UpdateBlock(blockID, req.Title, req.Content)
}

// Actions lists the refine actions for a block
func (s *onePagerService) Actions(ctx context.Context, p models.Principal, blockID string) ([]string, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.Actions(blockID)
}

// RequestAction starts an AI refinement
func (s *onePagerService) RequestAction(ctx context.Context, p models.Principal, blockID string, req *services.ActionRequest) (*models.View, error) {
	if req.Field == "" {
		req.Field = models.FieldContent
	}
	req.Action = strings.TrimSpace(req.Action)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Action, validation.Required, validation.Length(1, config.MaxActionLength)),
		validation.Field(&req.Field, validation.In(models.FieldTitle, models.FieldContent)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.RequestAction(blockID, req.Action, req.Field)
}

// Accept applies the block's suggestion
func (s *onePagerService) Accept(ctx context.Context, p models.Principal, blockID string) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.Accept(blockID)
}

// Reject discards the block's suggestion
func (s *onePagerService) Reject(ctx context.Context, p models.Principal, blockID string) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.Reject(blockID)
}

// RunFollowUp starts the offered follow-up action
func (s *onePagerService) RunFollowUp(ctx context.Context, p models.Principal, blockID string) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.RunFollowUp(blockID)
}

// DismissFollowUp drops the follow-up offer
func (s *onePagerService) DismissFollowUp(ctx context.Context, p models.Principal, blockID string) (*models.View, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return nil, err
	}
	return session.DismissFollowUp(blockID)
}

// ExportMarkdown renders the stored document
func (s *onePagerService) ExportMarkdown(ctx context.Context, p models.Principal) (string, error) {
	session, err := s.session(ctx, p)
	if err != nil {
		return "", err
	}
	return session.Markdown(), nil
}

// Shutdown flushes every pending save, then cancels in-flight AI calls.
func (s *onePagerService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.Unlock()

	// Evicted sessions are still flushing
	evicted := make(chan struct{})
	go func() {
		s.closing.Wait()
		close(evicted)
	}()
	select {
	case <-evicted:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	for _, entry := range entries {
		select {
		case <-entry.ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		if entry.session == nil {
			continue
		}
		if err := entry.session.Close(ctx); err != nil {
			s.logger.Error("failed to flush session", "principal", entry.session.principal.Key(), "error", err)
			errs = append(errs, err)
		}
	}

	s.cancel()
	s.logger.Info("one-pager service stopped", "sessions", len(entries))
	return errors.Join(errs...)
}
