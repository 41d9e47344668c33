package fanout

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/observability"
)

// Sender delivers one item to one recipient. Implementations handle text
// splitting, media, translation and forwarding.
type Sender interface {
	SendNews(ctx context.Context, recipient domain.Subscriber, item *domain.NewsItem) error
}

// Dispatcher fans an item out to its recipients with bounded concurrency and
// a pacing delay between sends. A failed delivery to one recipient never
// aborts delivery to the others.
type Dispatcher struct {
	selector    *Selector
	sender      Sender
	database    Repository
	logger      *zerolog.Logger
	concurrency int
	limiter     *rate.Limiter
}

func NewDispatcher(
	selector *Selector,
	sender Sender,
	database Repository,
	concurrency int,
	sendDelay time.Duration,
	logger *zerolog.Logger,
) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}

	limit := rate.Inf
	if sendDelay > 0 {
		limit = rate.Every(sendDelay)
	}

	return &Dispatcher{
		selector:    selector,
		sender:      sender,
		database:    database,
		logger:      logger,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// Dispatch delivers the item to every eligible recipient and records the
// delivered count on the item. It returns the number of successful sends.
func (d *Dispatcher) Dispatch(ctx context.Context, item *domain.NewsItem) (int, error) {
	recipients, err := d.selector.RecipientsFor(ctx, item.Category)
	if err != nil {
		return 0, fmt.Errorf("select recipients: %w", err)
	}

	observability.FanoutRecipients.Observe(float64(len(recipients)))

	if len(recipients) == 0 {
		return 0, nil
	}

	var (
		wg   sync.WaitGroup
		sent atomic.Int64
	)

	sem := make(chan struct{}, d.concurrency)

	for _, recipient := range recipients {
		if err := d.limiter.Wait(ctx); err != nil {
			break // context cancelled, stop handing out work
		}

		wg.Add(1)

		sem <- struct{}{}

		go func(recipient domain.Subscriber) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := d.sender.SendNews(ctx, recipient, item); err != nil {
				observability.FanoutSent.WithLabelValues("error").Inc()
				d.logger.Warn().
					Err(err).
					Int64("telegram_id", recipient.TelegramID).
					Str("item_id", item.ID).
					Msg("delivery to recipient failed")

				return
			}

			observability.FanoutSent.WithLabelValues("ok").Inc()
			sent.Add(1)
		}(recipient)
	}

	wg.Wait()

	delivered := int(sent.Load())

	if delivered > 0 {
		if err := d.database.IncrementSentCount(ctx, item.ID, delivered); err != nil {
			d.logger.Warn().Err(err).Str("item_id", item.ID).Msg("record sent count failed")
		}
	}

	d.logger.Info().
		Str("item_id", item.ID).
		Str("category", item.Category).
		Int("recipients", len(recipients)).
		Int("delivered", delivered).
		Msg("item dispatched")

	return delivered, nil
}
