package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// Columns are table-qualified so the same list works in joined queries.
const subscriberColumns = `subscribers.id, subscribers.telegram_id, subscribers.username, subscribers.language,
	subscribers.created_at, subscribers.trial_end, COALESCE(subscribers.subscription_plan, ''), subscribers.subscription_end`

func scanSubscriber(row pgx.Row) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	if err := row.Scan(
		&sub.ID, &sub.TelegramID, &sub.Username, &sub.Language, &sub.CreatedAt,
		&sub.TrialEnd, &sub.SubscriptionPlan, &sub.SubscriptionEnd,
	); err != nil {
		return nil, err
	}

	return &sub, nil
}

// GetSubscriberByTelegramID returns the subscriber, or nil on first contact.
func (db *DB) GetSubscriberByTelegramID(ctx context.Context, telegramID int64) (*domain.Subscriber, error) {
	sub, err := scanSubscriber(db.Pool.QueryRow(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE telegram_id = $1`, telegramID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get subscriber %d: %w", telegramID, err)
	}

	return sub, nil
}

// CreateSubscriber stores a new subscriber record.
func (db *DB) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	if sub.Language == "" {
		sub.Language = "uz"
	}

	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO subscribers (id, telegram_id, username, language, trial_end)
		VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.TelegramID, sub.Username, sub.Language, sub.TrialEnd,
	); err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}

	return nil
}

// SetTrialEnd records the trial expiry for the subscriber.
func (db *DB) SetTrialEnd(ctx context.Context, subscriberID string, trialEnd time.Time) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE subscribers SET trial_end = $1 WHERE id = $2`, trialEnd, subscriberID,
	); err != nil {
		return fmt.Errorf("set trial end: %w", err)
	}

	return nil
}

// SetSubscription puts the subscriber on a paid plan until the given time.
func (db *DB) SetSubscription(ctx context.Context, subscriberID, planKey string, subscriptionEnd time.Time) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE subscribers SET subscription_plan = $1, subscription_end = $2 WHERE id = $3`,
		planKey, subscriptionEnd, subscriberID,
	); err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}

	return nil
}

// SetLanguage records the subscriber's delivery language.
func (db *DB) SetLanguage(ctx context.Context, subscriberID, language string) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE subscribers SET language = $1 WHERE id = $2`, language, subscriberID,
	); err != nil {
		return fmt.Errorf("set language: %w", err)
	}

	return nil
}

// AllSubscribers returns every subscriber. Activity filtering happens at
// fan-out time, not here.
func (db *DB) AllSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+subscriberColumns+` FROM subscribers`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	return collectSubscribers(rows)
}

// CountSubscribers returns the total number of registered subscribers.
func (db *DB) CountSubscribers(ctx context.Context) (int, error) {
	var count int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}

	return count, nil
}

// SubscribersByInterest returns the subscribers who selected the category.
func (db *DB) SubscribersByInterest(ctx context.Context, category string) ([]domain.Subscriber, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		JOIN interest_selections ON interest_selections.subscriber_id = subscribers.id
		WHERE interest_selections.category = $1`, category)
	if err != nil {
		return nil, fmt.Errorf("query subscribers by interest: %w", err)
	}
	defer rows.Close()

	return collectSubscribers(rows)
}

func collectSubscribers(rows pgx.Rows) ([]domain.Subscriber, error) {
	var subs []domain.Subscriber

	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}

		subs = append(subs, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return subs, nil
}
