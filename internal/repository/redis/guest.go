// Package redis stores guest documents in Redis with a sliding expiry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"onepager/internal/domain"
	"onepager/internal/domain/models/onepager"
	"onepager/internal/domain/repositories"
)

// GuestStore implements the GuestRepository interface
type GuestStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewClient parses redisURL and checks the server is reachable.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewGuestStore creates a guest store. Keys are namespaced by the table
// prefix so environments sharing a server stay apart.
func NewGuestStore(client *redis.Client, tablePrefix string, ttl time.Duration, logger *slog.Logger) repositories.GuestRepository {
	return &GuestStore{
		client: client,
		prefix: tablePrefix + "onepager:guest:",
		ttl:    ttl,
		logger: logger,
	}
}

func (s *GuestStore) key(guestID string) string {
	return s.prefix + guestID
}

// Get returns the guest's document and extends its expiry.
func (s *GuestStore) Get(ctx context.Context, guestID string) (*onepager.Record, error) {
	data, err := s.client.GetEx(ctx, s.key(guestID), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guest one-pager: %w", err)
	}

	var rec onepager.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode guest one-pager: %w", err)
	}
	return &rec, nil
}

// Save overwrites the guest's document and resets its expiry.
func (s *GuestStore) Save(ctx context.Context, guestID string, rec *onepager.Record) error {
	stored := *rec
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode guest one-pager: %w", err)
	}

	if err := s.client.Set(ctx, s.key(guestID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save guest one-pager: %w", err)
	}

	s.logger.Debug("guest one-pager saved", "guest_id", guestID, "fields", len(rec.Fields))
	return nil
}
