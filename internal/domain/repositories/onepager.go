package repositories

import (
	"context"

	"onepager/internal/domain/models/onepager"
)

// OnePagerRepository stores one document per authenticated user.
type OnePagerRepository interface {
	// GetOrCreateForUser returns the user's document, creating it from
	// the given seed when none exists yet.
	GetOrCreateForUser(ctx context.Context, userID string, seed *onepager.Record) (*onepager.Record, error)

	// Save overwrites Title and Fields of an existing record (no patching).
	Save(ctx context.Context, record *onepager.Record) error
}

// GuestRepository stores documents for unauthenticated sessions. Entries
// expire after a period of inactivity.
type GuestRepository interface {
	// Get returns the guest's document or domain.ErrNotFound.
	Get(ctx context.Context, guestID string) (*onepager.Record, error)

	// Save overwrites the guest's document and refreshes its expiry.
	Save(ctx context.Context, guestID string, record *onepager.Record) error
}
