package autosave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type counter struct {
	calls atomic.Int32
	err   error
}

func (c *counter) save(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestScheduleCoalescesBurst(t *testing.T) {
	c := &counter{}
	s := New(30*time.Millisecond, c.save, testLogger())

	for i := 0; i < 5; i++ {
		s.Schedule()
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return c.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), c.calls.Load())
	assert.False(t, s.Pending())
}

func TestScheduleRestartsWindow(t *testing.T) {
	c := &counter{}
	s := New(50*time.Millisecond, c.save, testLogger())

	s.Schedule()
	time.Sleep(30 * time.Millisecond)
	s.Schedule()
	time.Sleep(30 * time.Millisecond)

	// 60ms since the first call, 30ms since the restart
	assert.Equal(t, int32(0), c.calls.Load())
	assert.Eventually(t, func() bool { return c.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCancelDropsPendingWrite(t *testing.T) {
	c := &counter{}
	s := New(20*time.Millisecond, c.save, testLogger())

	s.Schedule()
	require.True(t, s.Pending())
	s.Cancel()
	assert.False(t, s.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), c.calls.Load())
}

func TestFlushWritesImmediately(t *testing.T) {
	c := &counter{}
	s := New(time.Hour, c.save, testLogger())

	s.Schedule()
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(1), c.calls.Load())
	assert.False(t, s.Pending())

	// Nothing pending: no write
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestFlushReturnsSaveError(t *testing.T) {
	c := &counter{err: errors.New("store down")}
	s := New(time.Hour, c.save, testLogger())

	s.Schedule()
	assert.EqualError(t, s.Flush(context.Background()), "store down")
}

func TestTimerFailureIsLoggedNotRetried(t *testing.T) {
	c := &counter{err: errors.New("store down")}
	s := New(10*time.Millisecond, c.save, testLogger())

	s.Schedule()
	assert.Eventually(t, func() bool { return c.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestStopFlushesAndRefusesScheduling(t *testing.T) {
	c := &counter{}
	s := New(time.Hour, c.save, testLogger())

	s.Schedule()
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), c.calls.Load())

	s.Schedule()
	assert.False(t, s.Pending())
	assert.ErrorIs(t, s.Flush(context.Background()), ErrStopped)

	// Second Stop is a no-op
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestStopWaitsForInflightWrite(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	save := func(ctx context.Context) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}
	s := New(5*time.Millisecond, save, testLogger())
	s.Schedule()
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, finished.Load())
}

func TestStopHonorsContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	save := func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}
	s := New(5*time.Millisecond, save, testLogger())
	s.Schedule()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}
