package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/process/classify"
	"github.com/xabarchi/newsbot/internal/process/dedup"
)

const politicsText = "Prezident yangi qonunni imzoladi va hukumat qarorini e'lon qildi"

type mockRepository struct {
	posts []domain.RawPost

	itemExists     bool
	insertAccepted bool

	inserted  []*domain.NewsItem
	processed []string

	mediaItem *domain.NewsItem
	deleted   []string
}

func (m *mockRepository) UnprocessedPosts(_ context.Context, _ int) ([]domain.RawPost, error) {
	return m.posts, nil
}

func (m *mockRepository) MarkPostProcessed(_ context.Context, id string) error {
	m.processed = append(m.processed, id)

	return nil
}

func (m *mockRepository) CountUnprocessed(_ context.Context) (int, error) {
	return len(m.posts), nil
}

func (m *mockRepository) InsertNewsItem(_ context.Context, item *domain.NewsItem) (bool, error) {
	if !m.insertAccepted {
		return false, nil
	}

	item.ID = "item-1"
	m.inserted = append(m.inserted, item)

	return true, nil
}

func (m *mockRepository) NewsItemExists(_ context.Context, _, _ int64) (bool, error) {
	return m.itemExists, nil
}

func (m *mockRepository) LatestItemWithMedia(_ context.Context, _, _ string) (*domain.NewsItem, error) {
	return m.mediaItem, nil
}

func (m *mockRepository) DeleteNewsItem(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)

	return nil
}

type mockResolver struct {
	fileID string
	err    error
	calls  int
}

func (m *mockResolver) ResolveFileID(_ context.Context, _ *domain.RawPost) (string, error) {
	m.calls++

	return m.fileID, m.err
}

type mockDispatcher struct {
	dispatched []*domain.NewsItem
}

func (m *mockDispatcher) Dispatch(_ context.Context, item *domain.NewsItem) (int, error) {
	m.dispatched = append(m.dispatched, item)

	return 1, nil
}

func newTestPipeline(repo *mockRepository, resolver MediaResolver, dispatcher Dispatcher) *Pipeline {
	logger := zerolog.Nop()

	cfg := &config.Config{
		MinTextLen:         10,
		WorkerBatchSize:    10,
		WorkerPollInterval: 10 * time.Second,
	}

	return New(
		cfg,
		repo,
		classify.New(nil, &logger),
		dedup.NewGuard(repo, &logger),
		resolver,
		dispatcher,
		&logger,
	)
}

func rawPost(id string, text string) domain.RawPost {
	return domain.RawPost{
		ID:              id,
		ChannelID:       100,
		ChannelUsername: "kunuz",
		MessageID:       555,
		Text:            text,
		TGDate:          time.Now(),
	}
}

func TestPipeline_ProcessBatch(t *testing.T) {
	t.Run("news item persisted and dispatched", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", politicsText)},
			insertAccepted: true,
		}
		dispatcher := &mockDispatcher{}
		p := newTestPipeline(repo, nil, dispatcher)

		require.NoError(t, p.ProcessBatch(context.Background()))

		require.Len(t, repo.inserted, 1)
		item := repo.inserted[0]
		assert.Equal(t, config.CategoryPolitics, item.Category)
		assert.Equal(t, int64(100), item.ChannelID)
		assert.Equal(t, int64(555), item.MessageID)
		assert.Equal(t, []string{"post-1"}, repo.processed)
		require.Len(t, dispatcher.dispatched, 1)
	})

	t.Run("short text dropped but marked processed", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", "salom")},
			insertAccepted: true,
		}
		p := newTestPipeline(repo, nil, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Empty(t, repo.inserted)
		assert.Equal(t, []string{"post-1"}, repo.processed)
	})

	t.Run("short cyrillic text dropped but marked processed", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", "давлат")},
			insertAccepted: true,
		}
		p := newTestPipeline(repo, nil, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Empty(t, repo.inserted)
		assert.Equal(t, []string{"post-1"}, repo.processed)
	})

	t.Run("russian text dropped", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", "Президент заявил что было принято решение после встречи")},
			insertAccepted: true,
		}
		p := newTestPipeline(repo, nil, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Empty(t, repo.inserted)
	})

	t.Run("unclassifiable text dropped", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", "Бу қандайдир ғалати матн деб ёзилган")},
			insertAccepted: true,
		}
		p := newTestPipeline(repo, nil, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Empty(t, repo.inserted)
	})

	t.Run("known identity dropped as duplicate", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", politicsText)},
			itemExists:     true,
			insertAccepted: true,
		}
		p := newTestPipeline(repo, nil, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Empty(t, repo.inserted)
		assert.Equal(t, []string{"post-1"}, repo.processed)
	})

	t.Run("insert conflict treated as duplicate", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", politicsText)},
			insertAccepted: false,
		}
		p := newTestPipeline(repo, nil, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Empty(t, repo.inserted)
		assert.Equal(t, []string{"post-1"}, repo.processed)
	})
}

func TestPipeline_Media(t *testing.T) {
	mediaPost := rawPost("post-1", politicsText)
	mediaPost.MediaType = domain.MediaPhoto
	mediaPost.MediaData = []byte("jpeg bytes")

	t.Run("resolved media recorded on item", func(t *testing.T) {
		repo := &mockRepository{posts: []domain.RawPost{mediaPost}, insertAccepted: true}
		resolver := &mockResolver{fileID: "file-abc"}
		p := newTestPipeline(repo, resolver, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		require.Len(t, repo.inserted, 1)
		assert.Equal(t, "file-abc", repo.inserted[0].MediaFileID)
		assert.Equal(t, 1, resolver.calls)
	})

	t.Run("resolution failure persists item unresolved", func(t *testing.T) {
		repo := &mockRepository{posts: []domain.RawPost{mediaPost}, insertAccepted: true}
		resolver := &mockResolver{err: errors.New("upload failed")}
		p := newTestPipeline(repo, resolver, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		require.Len(t, repo.inserted, 1)
		assert.Empty(t, repo.inserted[0].MediaFileID)
	})

	t.Run("stale media item replaced by resolved one", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{mediaPost},
			insertAccepted: true,
			mediaItem:      &domain.NewsItem{ID: "stale", Category: config.CategoryPolitics, MediaType: domain.MediaPhoto},
		}
		resolver := &mockResolver{fileID: "file-abc"}
		p := newTestPipeline(repo, resolver, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Equal(t, []string{"stale"}, repo.deleted)
		require.Len(t, repo.inserted, 1)
	})

	t.Run("text-only post skips resolver", func(t *testing.T) {
		repo := &mockRepository{
			posts:          []domain.RawPost{rawPost("post-1", politicsText)},
			insertAccepted: true,
		}
		resolver := &mockResolver{fileID: "file-abc"}
		p := newTestPipeline(repo, resolver, nil)

		require.NoError(t, p.ProcessBatch(context.Background()))
		assert.Zero(t, resolver.calls)
	})
}
