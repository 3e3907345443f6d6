// Package autosave coalesces bursts of document mutations into one delayed
// write.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Flush after Stop.
var ErrStopped = errors.New("autosave scheduler stopped")

// SaveFunc persists the current state. It is called with whatever state the
// owner holds at fire time, so only the latest state is ever written.
type SaveFunc func(ctx context.Context) error

// Scheduler owns at most one outstanding timer. Each Schedule call within
// the quiescence window restarts it. Writes already started are not
// cancelable.
type Scheduler struct {
	delay        time.Duration
	writeTimeout time.Duration
	save         SaveFunc
	logger       *slog.Logger

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	stopped    bool
	inflight   sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWriteTimeout bounds each timer-fired write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.writeTimeout = d
	}
}

// New creates a scheduler firing save after delay of quiescence.
func New(delay time.Duration, save SaveFunc, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		delay:        delay,
		writeTimeout: 10 * time.Second,
		save:         save,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule (re)starts the quiescence timer. No-op after Stop.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(gen)
	})
}

// Pending reports whether a write is waiting for its timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Cancel drops the pending write, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Flush runs the pending write immediately and returns its error. Returns
// nil when nothing is pending.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.timer == nil {
		s.mu.Unlock()
		return nil
	}
	s.clearLocked()
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	return s.save(ctx)
}

// Stop flushes the pending write, refuses further scheduling, and waits for
// in-flight writes or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	pending := s.timer != nil
	s.clearLocked()
	s.stopped = true
	if pending {
		s.inflight.Add(1)
	}
	s.mu.Unlock()

	var err error
	if pending {
		err = s.save(ctx)
		s.inflight.Done()
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

func (s *Scheduler) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// fire runs on the timer goroutine. A stale generation means the timer was
// superseded between firing and acquiring the lock.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.save(ctx); err != nil {
		s.logger.Error("autosave failed", "error", err)
		return
	}
	s.logger.Debug("autosave completed")
}
