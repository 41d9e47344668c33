package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// UpsertChannel stores or refreshes a tracked source channel. The ingest
// cursor (last_message_id) is preserved on conflict.
func (db *DB) UpsertChannel(ctx context.Context, ch *domain.Channel) error {
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO channels (id, username, title, access_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			title = EXCLUDED.title,
			access_hash = EXCLUDED.access_hash,
			is_active = EXCLUDED.is_active`,
		ch.ID, normalizeUsername(ch.Username), ch.Title, ch.AccessHash, ch.IsActive,
	); err != nil {
		return fmt.Errorf("upsert channel: %w", err)
	}

	return nil
}

// GetChannelByUsername returns the channel, or nil when it is not tracked.
func (db *DB) GetChannelByUsername(ctx context.Context, username string) (*domain.Channel, error) {
	var ch domain.Channel

	err := db.Pool.QueryRow(ctx, `
		SELECT id, username, title, access_hash, last_message_id, is_active
		FROM channels
		WHERE username = $1`, normalizeUsername(username),
	).Scan(&ch.ID, &ch.Username, &ch.Title, &ch.AccessHash, &ch.LastMessageID, &ch.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", username, err)
	}

	return &ch, nil
}

// ListActiveChannels returns the channels the reader polls.
func (db *DB) ListActiveChannels(ctx context.Context) ([]domain.Channel, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, username, title, access_hash, last_message_id, is_active
		FROM channels
		WHERE is_active
		ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("query active channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel

	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Username, &ch.Title, &ch.AccessHash, &ch.LastMessageID, &ch.IsActive); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}

		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

// SetChannelCursor advances the last ingested message id for the channel.
func (db *DB) SetChannelCursor(ctx context.Context, channelID, lastMessageID int64) error {
	if _, err := db.Pool.Exec(ctx, `
		UPDATE channels SET last_message_id = GREATEST(last_message_id, $1) WHERE id = $2`,
		lastMessageID, channelID,
	); err != nil {
		return fmt.Errorf("set channel cursor: %w", err)
	}

	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(username, "@"))
}
