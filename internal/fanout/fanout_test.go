package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockRepository struct {
	byInterest []domain.Subscriber
	all        []domain.Subscriber

	mu        sync.Mutex
	sentItem  string
	sentDelta int
}

func (m *mockRepository) SubscribersByInterest(_ context.Context, _ string) ([]domain.Subscriber, error) {
	return m.byInterest, nil
}

func (m *mockRepository) AllSubscribers(_ context.Context) ([]domain.Subscriber, error) {
	return m.all, nil
}

func (m *mockRepository) IncrementSentCount(_ context.Context, itemID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sentItem = itemID
	m.sentDelta = delta

	return nil
}

type mockSender struct {
	mu     sync.Mutex
	sent   []int64
	failID int64
}

func (m *mockSender) SendNews(_ context.Context, recipient domain.Subscriber, _ *domain.NewsItem) error {
	if recipient.TelegramID == m.failID {
		return errors.New("blocked by user")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, recipient.TelegramID)

	return nil
}

func activeSub(id int64) domain.Subscriber {
	end := testNow.Add(24 * time.Hour)

	return domain.Subscriber{ID: "sub", TelegramID: id, TrialEnd: &end}
}

func expiredSub(id int64) domain.Subscriber {
	end := testNow.Add(-24 * time.Hour)

	return domain.Subscriber{ID: "sub", TelegramID: id, TrialEnd: &end, SubscriptionEnd: &end}
}

func newTestSelector(repo *mockRepository) *Selector {
	s := NewSelector(repo)
	s.now = func() time.Time { return testNow }

	return s
}

func TestSelector_RecipientsFor(t *testing.T) {
	t.Run("expired subscriber excluded despite interest row", func(t *testing.T) {
		repo := &mockRepository{byInterest: []domain.Subscriber{activeSub(1), expiredSub(2)}}
		s := newTestSelector(repo)

		got, err := s.RecipientsFor(context.Background(), config.CategorySport)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].TelegramID)
	})

	t.Run("general category selects all active subscribers", func(t *testing.T) {
		repo := &mockRepository{
			all:        []domain.Subscriber{activeSub(1), expiredSub(2), activeSub(3)},
			byInterest: []domain.Subscriber{activeSub(9)},
		}
		s := newTestSelector(repo)

		got, err := s.RecipientsFor(context.Background(), config.CategoryGeneral)
		require.NoError(t, err)
		require.Len(t, got, 2)
	})

	t.Run("no candidates", func(t *testing.T) {
		s := newTestSelector(&mockRepository{})

		got, err := s.RecipientsFor(context.Background(), config.CategorySport)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func newTestDispatcher(repo *mockRepository, sender Sender) *Dispatcher {
	logger := zerolog.Nop()

	return NewDispatcher(newTestSelector(repo), sender, repo, 4, 0, &logger)
}

func TestDispatcher_Dispatch(t *testing.T) {
	item := &domain.NewsItem{ID: "item-1", Category: config.CategorySport, Text: "gol"}

	t.Run("delivers to every active recipient", func(t *testing.T) {
		repo := &mockRepository{byInterest: []domain.Subscriber{activeSub(1), activeSub(2), activeSub(3)}}
		sender := &mockSender{}
		d := newTestDispatcher(repo, sender)

		sent, err := d.Dispatch(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, 3, sent)
		assert.ElementsMatch(t, []int64{1, 2, 3}, sender.sent)
		assert.Equal(t, "item-1", repo.sentItem)
		assert.Equal(t, 3, repo.sentDelta)
	})

	t.Run("one failing recipient does not abort the rest", func(t *testing.T) {
		repo := &mockRepository{byInterest: []domain.Subscriber{activeSub(1), activeSub(2), activeSub(3)}}
		sender := &mockSender{failID: 2}
		d := newTestDispatcher(repo, sender)

		sent, err := d.Dispatch(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.ElementsMatch(t, []int64{1, 3}, sender.sent)
		assert.Equal(t, 2, repo.sentDelta)
	})

	t.Run("no recipients is a no-op", func(t *testing.T) {
		repo := &mockRepository{}
		sender := &mockSender{}
		d := newTestDispatcher(repo, sender)

		sent, err := d.Dispatch(context.Background(), item)
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, repo.sentItem)
	})
}
