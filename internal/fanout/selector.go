// Package fanout decides who receives a news item and delivers it to them.
package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
)

type Repository interface {
	SubscribersByInterest(ctx context.Context, category string) ([]domain.Subscriber, error)
	AllSubscribers(ctx context.Context) ([]domain.Subscriber, error)
	IncrementSentCount(ctx context.Context, itemID string, delta int) error
}

// Selector produces the recipient set for a category. Activity is evaluated
// at fan-out time, so a subscriber whose trial or subscription has lapsed is
// excluded without cleaning up their interest rows.
type Selector struct {
	database Repository
	now      func() time.Time
}

func NewSelector(database Repository) *Selector {
	return &Selector{
		database: database,
		now:      time.Now,
	}
}

// RecipientsFor returns the active subscribers eligible for the category.
// The general pseudo-category bypasses interest matching and selects every
// active subscriber.
func (s *Selector) RecipientsFor(ctx context.Context, category string) ([]domain.Subscriber, error) {
	var (
		candidates []domain.Subscriber
		err        error
	)

	if category == config.CategoryGeneral {
		candidates, err = s.database.AllSubscribers(ctx)
	} else {
		candidates, err = s.database.SubscribersByInterest(ctx, category)
	}

	if err != nil {
		return nil, fmt.Errorf("load candidates for category %s: %w", category, err)
	}

	now := s.now()

	recipients := make([]domain.Subscriber, 0, len(candidates))

	for _, sub := range candidates {
		if sub.IsActive(now) {
			recipients = append(recipients, sub)
		}
	}

	return recipients, nil
}
