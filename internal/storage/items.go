package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// InsertNewsItem persists a classified item. It returns false when an item
// with the same (channel_id, message_id) already exists; the conflict is the
// duplicate signal, not an error.
func (db *DB) InsertNewsItem(ctx context.Context, item *domain.NewsItem) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO news_items (id, channel_id, channel_username, message_id, text, category, media_type, media_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (channel_id, message_id) DO NOTHING`,
		item.ID, item.ChannelID, item.ChannelUsername, item.MessageID,
		SanitizeUTF8(item.Text), item.Category, item.MediaType, item.MediaFileID,
	)
	if err != nil {
		return false, fmt.Errorf("insert news item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// NewsItemExists reports whether an item with the source identity exists.
func (db *DB) NewsItemExists(ctx context.Context, channelID, messageID int64) (bool, error) {
	var exists bool
	if err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM news_items WHERE channel_id = $1 AND message_id = $2)`,
		channelID, messageID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check news item exists: %w", err)
	}

	return exists, nil
}

const newsItemColumns = `id, channel_id, channel_username, message_id, text, category, media_type, media_file_id, sent_count, created_at`

func scanNewsItem(row pgx.Row) (*domain.NewsItem, error) {
	var item domain.NewsItem
	if err := row.Scan(
		&item.ID, &item.ChannelID, &item.ChannelUsername, &item.MessageID,
		&item.Text, &item.Category, &item.MediaType, &item.MediaFileID,
		&item.SentCount, &item.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &item, nil
}

// LatestItemByCategory returns the most recent item in the category, or nil
// when the category has none.
func (db *DB) LatestItemByCategory(ctx context.Context, category string) (*domain.NewsItem, error) {
	item, err := scanNewsItem(db.Pool.QueryRow(ctx, `
		SELECT `+newsItemColumns+`
		FROM news_items
		WHERE category = $1
		ORDER BY created_at DESC
		LIMIT 1`, category))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("query latest item for category %s: %w", category, err)
	}

	return item, nil
}

// LatestItemWithMedia returns the most recent item of the category carrying
// the media kind, or nil when there is none.
func (db *DB) LatestItemWithMedia(ctx context.Context, category, mediaType string) (*domain.NewsItem, error) {
	item, err := scanNewsItem(db.Pool.QueryRow(ctx, `
		SELECT `+newsItemColumns+`
		FROM news_items
		WHERE category = $1 AND media_type = $2
		ORDER BY created_at DESC
		LIMIT 1`, category, mediaType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("query media item for category %s: %w", category, err)
	}

	return item, nil
}

// DeleteNewsItem removes the item, used when a stale media item is replaced.
func (db *DB) DeleteNewsItem(ctx context.Context, id string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM news_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete news item: %w", err)
	}

	return nil
}

// ItemCountsByCategory returns the number of stored items per category.
func (db *DB) ItemCountsByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT category, COUNT(*) FROM news_items GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count items by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {
		var (
			category string
			count    int
		)

		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan item count: %w", err)
		}

		counts[category] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item counts: %w", err)
	}

	return counts, nil
}

// IncrementSentCount adds the delivered-recipient count to the item.
func (db *DB) IncrementSentCount(ctx context.Context, id string, delta int) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE news_items SET sent_count = sent_count + $1 WHERE id = $2`, delta, id,
	); err != nil {
		return fmt.Errorf("increment sent count: %w", err)
	}

	return nil
}
