package onepager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"onepager/internal/domain"
	models "onepager/internal/domain/models/onepager"
	"onepager/internal/domain/repositories"
	"onepager/internal/richtext"
)

// DefaultRecord is the starting document for new users and guests.
func DefaultRecord(userID string) *models.Record {
	now := time.Now()
	return &models.Record{
		UserID: userID,
		Title:  "One-Pager Title",
		Fields: []models.FieldRecord{
			{
				ID:      uuid.NewString(),
				Title:   "Problem Statement",
				Content: richtext.FromPlainText("Our current mobile app has a cluttered user interface, leading to a 20% drop-off in user engagement."),
			},
			{
				ID:      uuid.NewString(),
				Title:   "Proposed Solution",
				Content: richtext.FromPlainText("A complete redesign of the mobile app with a focus on intuitive navigation, a minimalist aesthetic, and personalized content discovery."),
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// documentStore routes users to the relational repository and guests to
// the guest store. Either may be nil, in which case documents of that kind
// live only in memory.
type documentStore struct {
	users  repositories.OnePagerRepository
	guests repositories.GuestRepository
}

// persistent reports whether saves for p go anywhere.
func (d *documentStore) persistent(p models.Principal) bool {
	if p.IsGuest() {
		return d.guests != nil
	}
	return d.users != nil
}

func (d *documentStore) load(ctx context.Context, p models.Principal) (*models.Record, error) {
	if !p.IsGuest() {
		if d.users == nil {
			return DefaultRecord(p.UserID), nil
		}
		rec, err := d.users.GetOrCreateForUser(ctx, p.UserID, DefaultRecord(p.UserID))
		if err != nil {
			return nil, fmt.Errorf("load one-pager for user %s: %w", p.UserID, err)
		}
		return rec, nil
	}

	if d.guests == nil {
		return DefaultRecord(""), nil
	}
	rec, err := d.guests.Get(ctx, p.GuestID)
	if errors.Is(err, domain.ErrNotFound) {
		return DefaultRecord(""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load guest one-pager: %w", err)
	}
	return rec, nil
}

func (d *documentStore) save(ctx context.Context, p models.Principal, rec *models.Record) error {
	if p.IsGuest() {
		return d.guests.Save(ctx, p.GuestID, rec)
	}
	return d.users.Save(ctx, rec)
}
