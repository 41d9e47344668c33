package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

var errDatabase = errors.New("database error")

type mockRepository struct {
	exists    bool
	existsErr error

	mediaItem *domain.NewsItem
	mediaErr  error

	deletedIDs []string
	deleteErr  error
}

func (m *mockRepository) NewsItemExists(_ context.Context, _, _ int64) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockRepository) LatestItemWithMedia(_ context.Context, _, _ string) (*domain.NewsItem, error) {
	return m.mediaItem, m.mediaErr
}

func (m *mockRepository) DeleteNewsItem(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}

	m.deletedIDs = append(m.deletedIDs, id)

	return nil
}

func newTestGuard(repo *mockRepository) *Guard {
	logger := zerolog.Nop()

	return NewGuard(repo, &logger)
}

func TestGuard_IsDuplicate(t *testing.T) {
	tests := []struct {
		name    string
		repo    *mockRepository
		want    bool
		wantErr bool
	}{
		{
			name: "new identity passes",
			repo: &mockRepository{exists: false},
			want: false,
		},
		{
			name: "existing identity dropped",
			repo: &mockRepository{exists: true},
			want: true,
		},
		{
			name:    "storage failure surfaces",
			repo:    &mockRepository{existsErr: errDatabase},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGuard(tt.repo)

			got, err := g.IsDuplicate(context.Background(), 100, 555)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuard_BackfillMedia(t *testing.T) {
	incoming := &domain.NewsItem{
		ID:          "new-item",
		Category:    "sport",
		MediaType:   domain.MediaPhoto,
		MediaFileID: "file-123",
	}

	t.Run("stale media item replaced", func(t *testing.T) {
		repo := &mockRepository{
			mediaItem: &domain.NewsItem{ID: "old-item", Category: "sport", MediaType: domain.MediaPhoto},
		}
		g := newTestGuard(repo)

		require.NoError(t, g.BackfillMedia(context.Background(), incoming))
		assert.Equal(t, []string{"old-item"}, repo.deletedIDs)
	})

	t.Run("resolved media item kept", func(t *testing.T) {
		repo := &mockRepository{
			mediaItem: &domain.NewsItem{
				ID:          "old-item",
				Category:    "sport",
				MediaType:   domain.MediaPhoto,
				MediaFileID: "file-999",
			},
		}
		g := newTestGuard(repo)

		require.NoError(t, g.BackfillMedia(context.Background(), incoming))
		assert.Empty(t, repo.deletedIDs)
	})

	t.Run("no stored media item", func(t *testing.T) {
		repo := &mockRepository{}
		g := newTestGuard(repo)

		require.NoError(t, g.BackfillMedia(context.Background(), incoming))
		assert.Empty(t, repo.deletedIDs)
	})

	t.Run("incoming without resolved media is a no-op", func(t *testing.T) {
		repo := &mockRepository{
			mediaItem: &domain.NewsItem{ID: "old-item", Category: "sport", MediaType: domain.MediaPhoto},
		}
		g := newTestGuard(repo)

		unresolved := &domain.NewsItem{ID: "new-item", Category: "sport", MediaType: domain.MediaPhoto}
		require.NoError(t, g.BackfillMedia(context.Background(), unresolved))
		assert.Empty(t, repo.deletedIDs)
	})

	t.Run("delete failure surfaces", func(t *testing.T) {
		repo := &mockRepository{
			mediaItem: &domain.NewsItem{ID: "old-item", Category: "sport", MediaType: domain.MediaPhoto},
			deleteErr: errDatabase,
		}
		g := newTestGuard(repo)

		require.Error(t, g.BackfillMedia(context.Background(), incoming))
	})
}
