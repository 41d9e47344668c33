package storage

import (
	"context"
	"fmt"
)

// AddInterest records the subscriber's selection of the category. Reselection
// is a no-op thanks to the uniqueness constraint.
func (db *DB) AddInterest(ctx context.Context, subscriberID, category string) error {
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO interest_selections (subscriber_id, category)
		VALUES ($1, $2)
		ON CONFLICT (subscriber_id, category) DO NOTHING`,
		subscriberID, category,
	); err != nil {
		return fmt.Errorf("add interest: %w", err)
	}

	return nil
}

// RemoveInterest deletes the subscriber's selection of the category.
func (db *DB) RemoveInterest(ctx context.Context, subscriberID, category string) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM interest_selections WHERE subscriber_id = $1 AND category = $2`,
		subscriberID, category,
	); err != nil {
		return fmt.Errorf("remove interest: %w", err)
	}

	return nil
}

// ListInterests returns the categories the subscriber has selected.
func (db *DB) ListInterests(ctx context.Context, subscriberID string) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT category FROM interest_selections WHERE subscriber_id = $1 ORDER BY created_at`,
		subscriberID)
	if err != nil {
		return nil, fmt.Errorf("query interests: %w", err)
	}
	defer rows.Close()

	var categories []string

	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interests: %w", err)
	}

	return categories, nil
}
