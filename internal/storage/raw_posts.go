package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// SaveRawPost stores a captured post. It returns false when a post with the
// same (channel_id, message_id) already exists: the unique constraint makes
// check-and-insert atomic under concurrent ingestion.
func (db *DB) SaveRawPost(ctx context.Context, post *domain.RawPost) (bool, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO raw_posts (id, channel_id, channel_username, message_id, text, media_type, media_data, tg_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (channel_id, message_id) DO NOTHING`,
		post.ID, post.ChannelID, post.ChannelUsername, post.MessageID,
		SanitizeUTF8(post.Text), post.MediaType, post.MediaData, post.TGDate,
	)
	if err != nil {
		return false, fmt.Errorf("insert raw post: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UnprocessedPosts returns the oldest posts the pipeline has not handled yet.
func (db *DB) UnprocessedPosts(ctx context.Context, limit int) ([]domain.RawPost, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, channel_id, channel_username, message_id, text, media_type, media_data, tg_date, created_at
		FROM raw_posts
		WHERE processed_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.RawPost

	for rows.Next() {
		var p domain.RawPost
		if err := rows.Scan(
			&p.ID, &p.ChannelID, &p.ChannelUsername, &p.MessageID,
			&p.Text, &p.MediaType, &p.MediaData, &p.TGDate, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan raw post: %w", err)
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw posts: %w", err)
	}

	return posts, nil
}

// MarkPostProcessed records that the pipeline has handled the post,
// whatever the outcome was.
func (db *DB) MarkPostProcessed(ctx context.Context, id string) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE raw_posts SET processed_at = $1 WHERE id = $2`, time.Now(), id,
	); err != nil {
		return fmt.Errorf("mark post processed: %w", err)
	}

	return nil
}

// CountUnprocessed returns the pipeline backlog size.
func (db *DB) CountUnprocessed(ctx context.Context) (int, error) {
	var count int
	if err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM raw_posts WHERE processed_at IS NULL`,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unprocessed posts: %w", err)
	}

	return count, nil
}
