package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onepager/internal/domain"
	"onepager/internal/domain/models/onepager"
	"onepager/internal/richtext"
)

func setupTestStore(t *testing.T, ttl time.Duration) (*GuestStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewGuestStore(client, "test_", ttl, logger).(*GuestStore)
	return store, s
}

func guestRecord() *onepager.Record {
	return &onepager.Record{
		Title: "Guest Plan",
		Fields: []onepager.FieldRecord{
			{ID: "f1", Title: "Problem Statement", Content: richtext.FromPlainText("Too many clicks.")},
			{ID: "f2", Title: "Risks", Content: richtext.BulletList([]string{"Budget"})},
		},
	}
}

func TestGuestStoreSaveAndGet(t *testing.T) {
	store, s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "g-1", guestRecord()))
	assert.True(t, s.Exists("test_onepager:guest:g-1"))

	got, err := store.Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Guest Plan", got.Title)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "f2", got.Fields[1].ID)
	assert.True(t, richtext.Equal(richtext.BulletList([]string{"Budget"}), got.Fields[1].Content))
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGuestStoreMissing(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuestStoreExpiry(t *testing.T) {
	store, s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "g-1", guestRecord()))

	s.FastForward(45 * time.Minute)
	_, err := store.Get(ctx, "g-1")
	require.NoError(t, err, "reads extend the expiry")

	s.FastForward(45 * time.Minute)
	_, err = store.Get(ctx, "g-1")
	require.NoError(t, err)

	s.FastForward(61 * time.Minute)
	_, err = store.Get(ctx, "g-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuestStoreOverwrites(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "g-1", guestRecord()))
	require.NoError(t, store.Save(ctx, "g-1", &onepager.Record{Title: "Rewritten"}))

	got, err := store.Get(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "Rewritten", got.Title)
	assert.Empty(t, got.Fields)
}

func TestGuestStoreIsolation(t *testing.T) {
	store, _ := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "g-1", guestRecord()))

	_, err := store.Get(ctx, "g-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuestStoreCorruptEntry(t *testing.T) {
	store, s := setupTestStore(t, time.Hour)

	require.NoError(t, s.Set("test_onepager:guest:g-1", "{not json"))

	_, err := store.Get(context.Background(), "g-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
