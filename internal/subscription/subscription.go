// Package subscription decides what a subscriber is entitled to: how many
// categories their plan allows, whether a new selection is permitted, and
// the trial and paid-subscription lifecycle.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
)

var (
	ErrLimitReached    = errors.New("subscription: category limit reached")
	ErrUnknownCategory = errors.New("subscription: unknown category")
	ErrUnknownPlan     = errors.New("subscription: unknown plan")
	ErrTrialUsed       = errors.New("subscription: trial already used")
)

const trialCategoryLimit = 1

type Repository interface {
	GetSubscriberByTelegramID(ctx context.Context, telegramID int64) (*domain.Subscriber, error)
	CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error
	SetTrialEnd(ctx context.Context, subscriberID string, trialEnd time.Time) error
	SetSubscription(ctx context.Context, subscriberID, planKey string, subscriptionEnd time.Time) error
	AddInterest(ctx context.Context, subscriberID, category string) error
	RemoveInterest(ctx context.Context, subscriberID, category string) error
	ListInterests(ctx context.Context, subscriberID string) ([]string, error)
}

type Service struct {
	database Repository
	cfg      *config.Config
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(database Repository, cfg *config.Config, logger *zerolog.Logger) *Service {
	return &Service{
		database: database,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// CategoryLimit returns the number of categories the subscriber may hold
// under their currently active plan. nil means unlimited. The rules apply
// in order: admin allow-list, active paid subscription, active trial,
// nothing active.
func (s *Service) CategoryLimit(sub *domain.Subscriber) *int {
	now := s.now()

	if s.cfg.IsAdmin(sub.TelegramID) {
		return nil
	}

	if sub.HasActiveSubscription(now) {
		plan, ok := config.PlanByKey(sub.SubscriptionPlan)
		if !ok {
			// Plan key persisted before a config change; treat as the
			// tightest paid tier rather than locking the subscriber out.
			s.logger.Warn().Str("plan", sub.SubscriptionPlan).Msg("subscriber has unknown plan key")

			limit := trialCategoryLimit

			return &limit
		}

		return plan.CategoryLimit
	}

	if sub.TrialEnd != nil && sub.TrialEnd.After(now) {
		limit := trialCategoryLimit

		return &limit
	}

	limit := 0

	return &limit
}

// CanAddCategory reports whether the subscriber may select one more category
// on top of selectionCount existing ones.
func (s *Service) CanAddCategory(sub *domain.Subscriber, selectionCount int) bool {
	limit := s.CategoryLimit(sub)
	if limit == nil {
		return true
	}

	return selectionCount < *limit
}

// Register returns the subscriber for the Telegram identity, creating the
// record on first contact. A newly created subscriber receives the trial
// immediately; returning subscribers keep whatever state they have.
func (s *Service) Register(ctx context.Context, telegramID int64, username string) (*domain.Subscriber, error) {
	sub, err := s.database.GetSubscriberByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get subscriber %d: %w", telegramID, err)
	}

	if sub != nil {
		return sub, nil
	}

	trialEnd := s.now().Add(s.cfg.TrialDuration())
	sub = &domain.Subscriber{
		TelegramID: telegramID,
		Username:   username,
		Language:   "uz",
		TrialEnd:   &trialEnd,
	}

	if err := s.database.CreateSubscriber(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscriber %d: %w", telegramID, err)
	}

	s.logger.Info().
		Int64("telegram_id", telegramID).
		Time("trial_end", trialEnd).
		Msg("subscriber registered with trial")

	return sub, nil
}

// StartTrial grants the trial to a subscriber who has never had one. The
// trial is granted at most once per subscriber: an expired trial is not
// renewable.
func (s *Service) StartTrial(ctx context.Context, sub *domain.Subscriber) error {
	if sub.TrialEnd != nil {
		return ErrTrialUsed
	}

	trialEnd := s.now().Add(s.cfg.TrialDuration())
	if err := s.database.SetTrialEnd(ctx, sub.ID, trialEnd); err != nil {
		return fmt.Errorf("set trial end: %w", err)
	}

	sub.TrialEnd = &trialEnd

	return nil
}

// ActivateSubscription puts the subscriber on the plan starting now. An
// existing subscription is overwritten, not extended.
func (s *Service) ActivateSubscription(ctx context.Context, sub *domain.Subscriber, planKey string) error {
	plan, ok := config.PlanByKey(planKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlan, planKey)
	}

	subscriptionEnd := s.now().Add(plan.Duration)
	if err := s.database.SetSubscription(ctx, sub.ID, plan.Key, subscriptionEnd); err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}

	sub.SubscriptionPlan = plan.Key
	sub.SubscriptionEnd = &subscriptionEnd

	s.logger.Info().
		Int64("telegram_id", sub.TelegramID).
		Str("plan", plan.Key).
		Time("subscription_end", subscriptionEnd).
		Msg("subscription activated")

	return nil
}

// SelectCategory records the subscriber's interest in the category after the
// entitlement check passes.
func (s *Service) SelectCategory(ctx context.Context, sub *domain.Subscriber, category string) error {
	if !config.IsKnownCategory(category) || category == config.CategoryGeneral {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	selected, err := s.database.ListInterests(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("list interests: %w", err)
	}

	for _, c := range selected {
		if c == category {
			return nil // already selected, idempotent
		}
	}

	if !s.CanAddCategory(sub, len(selected)) {
		return ErrLimitReached
	}

	if err := s.database.AddInterest(ctx, sub.ID, category); err != nil {
		return fmt.Errorf("add interest: %w", err)
	}

	return nil
}

// DeselectCategory removes the subscriber's interest in the category.
// Removing a category never requires an entitlement check.
func (s *Service) DeselectCategory(ctx context.Context, sub *domain.Subscriber, category string) error {
	if err := s.database.RemoveInterest(ctx, sub.ID, category); err != nil {
		return fmt.Errorf("remove interest: %w", err)
	}

	return nil
}

// Interests returns the subscriber's selected categories.
func (s *Service) Interests(ctx context.Context, sub *domain.Subscriber) ([]string, error) {
	selected, err := s.database.ListInterests(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}

	return selected, nil
}
