// Package dedup suppresses re-ingestion of posts the pipeline has already
// persisted. Identity is the (channel_id, message_id) pair: sources never
// reuse message identifiers, so the check needs no time window.
package dedup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

type Repository interface {
	NewsItemExists(ctx context.Context, channelID int64, messageID int64) (bool, error)
	LatestItemWithMedia(ctx context.Context, category, mediaType string) (*domain.NewsItem, error)
	DeleteNewsItem(ctx context.Context, id string) error
}

type Guard struct {
	database Repository
	logger   *zerolog.Logger
}

func NewGuard(database Repository, logger *zerolog.Logger) *Guard {
	return &Guard{database: database, logger: logger}
}

// IsDuplicate reports whether a news item with the same source identity has
// already been persisted. It is advisory: the insert itself must still rely
// on the storage unique constraint, since a concurrent catch-up sweep can
// ingest the same message between this check and the insert.
func (g *Guard) IsDuplicate(ctx context.Context, channelID, messageID int64) (bool, error) {
	exists, err := g.database.NewsItemExists(ctx, channelID, messageID)
	if err != nil {
		return false, fmt.Errorf("check news item exists: %w", err)
	}

	if exists {
		g.logger.Debug().
			Int64("channel_id", channelID).
			Int64("message_id", messageID).
			Msg("duplicate post dropped")
	}

	return exists, nil
}

// BackfillMedia keeps at most one media-bearing item per category and media
// kind. When the incoming item carries a resolved media reference and the
// stored item of the same category and kind does not, the stale one is
// deleted so the new item takes its place. This is replacement, not
// duplicate rejection: the incoming item is persisted either way.
func (g *Guard) BackfillMedia(ctx context.Context, incoming *domain.NewsItem) error {
	if !incoming.HasResolvedMedia() {
		return nil
	}

	stored, err := g.database.LatestItemWithMedia(ctx, incoming.Category, incoming.MediaType)
	if err != nil {
		return fmt.Errorf("find media item for category %s: %w", incoming.Category, err)
	}

	if stored == nil || stored.HasResolvedMedia() {
		return nil
	}

	if err := g.database.DeleteNewsItem(ctx, stored.ID); err != nil {
		return fmt.Errorf("delete stale media item %s: %w", stored.ID, err)
	}

	g.logger.Debug().
		Str("item_id", stored.ID).
		Str("category", incoming.Category).
		Str("media_type", incoming.MediaType).
		Msg("stale media item replaced")

	return nil
}
