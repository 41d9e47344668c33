// Package pipeline turns captured raw posts into classified news items and
// hands them to fan-out. It is the only writer of news_items.
package pipeline

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/platform/observability"
	"github.com/xabarchi/newsbot/internal/process/classify"
	"github.com/xabarchi/newsbot/internal/process/cleaner"
	"github.com/xabarchi/newsbot/internal/process/dedup"
	"github.com/xabarchi/newsbot/internal/process/language"
	db "github.com/xabarchi/newsbot/internal/storage"
)

type Repository interface {
	dedup.Repository

	UnprocessedPosts(ctx context.Context, limit int) ([]domain.RawPost, error)
	MarkPostProcessed(ctx context.Context, id string) error
	CountUnprocessed(ctx context.Context) (int, error)
	InsertNewsItem(ctx context.Context, item *domain.NewsItem) (bool, error)
}

// Compile-time assertion that *db.DB implements Repository.
var _ Repository = (*db.DB)(nil)

// MediaResolver turns a post's downloaded media payload into a reusable
// delivery reference. Resolution is best-effort: items without a resolved
// reference are delivered by forwarding the original message.
type MediaResolver interface {
	ResolveFileID(ctx context.Context, post *domain.RawPost) (string, error)
}

// Dispatcher fans a persisted item out to its recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, item *domain.NewsItem) (int, error)
}

const (
	dropReasonShortText  = "short_text"
	dropReasonLanguage   = "language"
	dropReasonNoCategory = "no_category"
	dropReasonDuplicate  = "duplicate"

	statusPersisted = "persisted"
	statusDropped   = "dropped"
	statusError     = "error"
)

type Pipeline struct {
	cfg        *config.Config
	database   Repository
	classifier *classify.Classifier
	guard      *dedup.Guard
	resolver   MediaResolver // nil when no delivery transport is attached
	dispatcher Dispatcher    // nil in ingest-only deployments
	logger     *zerolog.Logger
}

func New(
	cfg *config.Config,
	database Repository,
	classifier *classify.Classifier,
	guard *dedup.Guard,
	resolver MediaResolver,
	dispatcher Dispatcher,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		database:   database,
		classifier: classifier,
		guard:      guard,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run polls for unprocessed posts until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info().
		Int("batch_size", p.cfg.WorkerBatchSize).
		Dur("poll_interval", p.cfg.WorkerPollInterval).
		Msg("pipeline worker starting")

	for {
		if err := p.ProcessBatch(ctx); err != nil {
			p.logger.Error().Err(err).Msg("failed to process batch")
		}

		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-time.After(p.cfg.WorkerPollInterval):
		}
	}
}

// ProcessBatch handles one batch of unprocessed posts. Individual post
// failures are logged and do not fail the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context) error {
	start := time.Now()

	posts, err := p.database.UnprocessedPosts(ctx, p.cfg.WorkerBatchSize)
	if err != nil {
		return fmt.Errorf("get unprocessed posts: %w", err)
	}

	if backlog, err := p.database.CountUnprocessed(ctx); err == nil {
		observability.PipelineBacklog.Set(float64(backlog))
	}

	if len(posts) == 0 {
		return nil
	}

	for i := range posts {
		post := &posts[i]

		status, err := p.processPost(ctx, post)
		if err != nil {
			// The post is marked processed regardless: redelivery is the
			// source listener's job and the duplicate guard absorbs it.
			p.logger.Error().
				Err(err).
				Int64("channel_id", post.ChannelID).
				Int64("message_id", post.MessageID).
				Msg("failed to process post")

			status = statusError
		}

		observability.PipelineProcessed.WithLabelValues(status).Inc()

		if err := p.database.MarkPostProcessed(ctx, post.ID); err != nil {
			return fmt.Errorf("mark post processed: %w", err)
		}
	}

	observability.PipelineBatchDurationSeconds.Observe(time.Since(start).Seconds())
	p.logger.Debug().Int("posts", len(posts)).Msg("pipeline batch finished")

	return nil
}

func (p *Pipeline) processPost(ctx context.Context, post *domain.RawPost) (string, error) {
	text := cleaner.Clean(post.Text)

	if utf8.RuneCountInString(text) < p.cfg.MinTextLen {
		p.drop(post, dropReasonShortText)

		return statusDropped, nil
	}

	if !language.IsUzbek(text) {
		p.drop(post, dropReasonLanguage)

		return statusDropped, nil
	}

	category := p.classifier.Classify(ctx, text, post.ChannelUsername)
	if category == "" {
		p.drop(post, dropReasonNoCategory)

		return statusDropped, nil
	}

	isDup, err := p.guard.IsDuplicate(ctx, post.ChannelID, post.MessageID)
	if err != nil {
		return "", err
	}

	if isDup {
		p.drop(post, dropReasonDuplicate)

		return statusDropped, nil
	}

	item := &domain.NewsItem{
		ChannelID:       post.ChannelID,
		ChannelUsername: post.ChannelUsername,
		MessageID:       post.MessageID,
		Text:            text,
		Category:        category,
		MediaType:       post.MediaType,
	}

	if post.MediaType != "" && p.resolver != nil {
		fileID, err := p.resolver.ResolveFileID(ctx, post)
		if err != nil {
			p.logger.Warn().
				Err(err).
				Int64("message_id", post.MessageID).
				Msg("media resolution failed, item will be forwarded instead")
		} else {
			item.MediaFileID = fileID
		}
	}

	if err := p.guard.BackfillMedia(ctx, item); err != nil {
		return "", err
	}

	inserted, err := p.database.InsertNewsItem(ctx, item)
	if err != nil {
		return "", err
	}

	if !inserted {
		// Lost the race against a concurrent ingester. Same outcome as the
		// advisory duplicate check.
		p.drop(post, dropReasonDuplicate)

		return statusDropped, nil
	}

	observability.ItemsClassified.WithLabelValues(category).Inc()

	p.logger.Info().
		Str("item_id", item.ID).
		Str("category", category).
		Str("channel", post.ChannelUsername).
		Msg("news item persisted")

	if p.dispatcher != nil {
		if _, err := p.dispatcher.Dispatch(ctx, item); err != nil {
			p.logger.Warn().Err(err).Str("item_id", item.ID).Msg("fanout failed")
		}
	}

	return statusPersisted, nil
}

func (p *Pipeline) drop(post *domain.RawPost, reason string) {
	observability.PipelineDrops.WithLabelValues(reason).Inc()

	p.logger.Debug().
		Int64("channel_id", post.ChannelID).
		Int64("message_id", post.MessageID).
		Str("reason", reason).
		Str("text", cleaner.Preview(post.Text, 80)).
		Msg("post dropped")
}
