// Package reader ingests posts from source channels over MTProto. It polls
// channel history, saves new posts as raw posts for the pipeline and keeps
// per-channel cursors so restarts resume where they left off.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/platform/observability"
)

// ErrChannelNotFound indicates the channel was not found.
var ErrChannelNotFound = errors.New("channel not found")

// ErrNotAChannel indicates the peer is not a channel.
var ErrNotAChannel = errors.New("peer is not a channel")

const (
	maxPhotoBytes = 10 * 1024 * 1024
	maxVideoBytes = 20 * 1024 * 1024

	errorRetryDelay = 10 * time.Second
	maxWorkers      = 4
)

type Repository interface {
	ListActiveChannels(ctx context.Context) ([]domain.Channel, error)
	GetChannelByUsername(ctx context.Context, username string) (*domain.Channel, error)
	UpsertChannel(ctx context.Context, ch *domain.Channel) error
	SetChannelCursor(ctx context.Context, channelID, lastMessageID int64) error
	SaveRawPost(ctx context.Context, post *domain.RawPost) (bool, error)
}

type Reader struct {
	cfg      *config.Config
	database Repository
	client   *telegram.Client
	logger   *zerolog.Logger
	// Worker pool for parallel channel fetches
	workerSem chan struct{}
}

func New(cfg *config.Config, database Repository, logger *zerolog.Logger) *Reader {
	workers := len(cfg.SourceChannels)
	if workers < 1 {
		workers = 1
	}

	if workers > maxWorkers {
		workers = maxWorkers
	}

	return &Reader{
		cfg:       cfg,
		database:  database,
		logger:    logger,
		workerSem: make(chan struct{}, workers),
	}
}

func (r *Reader) Run(ctx context.Context) error {
	client := telegram.NewClient(r.cfg.TGAPIID, r.cfg.TGAPIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{
			Path: r.cfg.TGSessionPath,
		},
	})

	r.client = client

	return client.Run(ctx, func(ctx context.Context) error {
		if err := client.Auth().IfNecessary(ctx, r.authFlow()); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}

		r.logger.Info().Msg("Successfully authenticated as user")

		api := tg.NewClient(client)

		if err := r.seedChannels(ctx, api); err != nil {
			return err
		}

		return r.ingestPosts(ctx, api)
	})
}

// seedChannels makes sure every configured source channel is tracked. Already
// known channels keep their cached peer info and cursor.
func (r *Reader) seedChannels(ctx context.Context, api *tg.Client) error {
	for _, username := range r.cfg.SourceChannels {
		username = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
		if username == "" {
			continue
		}

		known, err := r.database.GetChannelByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("look up channel %s: %w", username, err)
		}

		if known != nil {
			continue
		}

		channel, err := r.resolveChannel(ctx, api, username)
		if err != nil {
			r.logger.Error().Err(err).Str("channel", username).Msg("failed to resolve source channel")

			continue
		}

		if err := r.database.UpsertChannel(ctx, channel); err != nil {
			return fmt.Errorf("save channel %s: %w", username, err)
		}

		r.logger.Info().
			Str("channel", username).
			Int64("peer_id", channel.ID).
			Str("title", channel.Title).
			Msg("source channel tracked")
	}

	return nil
}

func (r *Reader) resolveChannel(ctx context.Context, api *tg.Client, username string) (*domain.Channel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
	if err != nil {
		return nil, fmt.Errorf("resolve username: %w", err)
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, username)
	}

	channel, ok := resolved.Chats[0].(*tg.Channel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAChannel, username)
	}

	return &domain.Channel{
		ID:         channel.ID,
		Username:   username,
		Title:      channel.Title,
		AccessHash: channel.AccessHash,
		IsActive:   true,
	}, nil
}

func (r *Reader) ingestPosts(ctx context.Context, api *tg.Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		default:
		}

		channels, err := r.database.ListActiveChannels(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to list active channels")

			select {
			case <-ctx.Done():
				return ctx.Err() //nolint:wrapcheck
			case <-time.After(errorRetryDelay):
			}

			continue
		}

		if len(channels) == 0 {
			r.logger.Info().Msg("No active channels to track. Waiting...")

			select {
			case <-ctx.Done():
				return ctx.Err() //nolint:wrapcheck
			case <-time.After(r.cfg.ReaderPollInterval):
			}

			continue
		}

		start := time.Now()
		cycleCount := r.fetchAllChannels(ctx, api, channels)

		r.logger.Info().
			Int("channels", len(channels)).
			Int("posts", cycleCount).
			Dur("duration", time.Since(start)).
			Msg("Finished ingestion cycle")

		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-time.After(r.cfg.ReaderPollInterval):
		}
	}
}

func (r *Reader) fetchAllChannels(ctx context.Context, api *tg.Client, channels []domain.Channel) int {
	type fetchResult struct {
		channel string
		count   int
		err     error
	}

	results := make(chan fetchResult, len(channels))

	for _, ch := range channels {
		select {
		case r.workerSem <- struct{}{}:
		case <-ctx.Done():
			return 0
		}

		go func(ch domain.Channel) {
			defer func() { <-r.workerSem }()

			count, err := r.fetchChannelPosts(ctx, api, ch)
			results <- fetchResult{channel: ch.Username, count: count, err: err}
		}(ch)
	}

	total := 0

	for range channels {
		select {
		case <-ctx.Done():
			return total
		case result := <-results:
			if result.err != nil {
				observability.ReaderFetchRequestsTotal.WithLabelValues(result.channel, "error").Inc()
				r.logger.Error().Str("channel", result.channel).Err(result.err).Msg("failed to fetch posts for channel")

				continue
			}

			observability.ReaderFetchRequestsTotal.WithLabelValues(result.channel, "ok").Inc()

			total += result.count
		}
	}

	return total
}

func (r *Reader) fetchChannelPosts(ctx context.Context, api *tg.Client, ch domain.Channel) (int, error) {
	peer := &tg.InputPeerChannel{
		ChannelID:  ch.ID,
		AccessHash: ch.AccessHash,
	}

	// A channel seen for the first time gets a deeper catch-up sweep so the
	// backlog between deploys is ingested too.
	limit := r.cfg.ReaderFetchLimit
	if ch.LastMessageID == 0 {
		limit = r.cfg.ReaderCatchupLimit
	}

	req := &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	}

	if ch.LastMessageID > 0 {
		// Fetch messages newer than the last seen one.
		req.OffsetID = int(ch.LastMessageID)
		req.AddOffset = -limit
	}

	history, err := api.MessagesGetHistory(ctx, req)
	if err != nil {
		if handled, werr := r.handleFloodWait(ctx, err, ch.Username); handled {
			return 0, werr
		}

		return 0, fmt.Errorf("get history: %w", err)
	}

	messages := historyMessages(history)

	count := 0
	maxID := ch.LastMessageID

	for _, m := range messages {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}

		if int64(msg.ID) > maxID {
			maxID = int64(msg.ID)
		}

		if int64(msg.ID) <= ch.LastMessageID {
			continue // already ingested, GetHistory windows overlap
		}

		if msg.Message == "" && msg.Media == nil {
			continue
		}

		post := &domain.RawPost{
			ChannelID:       ch.ID,
			ChannelUsername: ch.Username,
			MessageID:       int64(msg.ID),
			Text:            msg.Message,
			TGDate:          time.Unix(int64(msg.Date), 0),
		}

		if msg.Media != nil {
			mediaType, data, err := r.downloadMedia(ctx, api, msg.Media)
			if err != nil {
				r.logger.Warn().Err(err).Str("channel", ch.Username).Int("msg_id", msg.ID).Msg("media download failed")
			} else {
				post.MediaType = mediaType
				post.MediaData = data
			}
		}

		saved, err := r.database.SaveRawPost(ctx, post)
		if err != nil {
			r.logger.Error().Err(err).Str("channel", ch.Username).Int("msg_id", msg.ID).Msg("failed to save raw post")

			continue
		}

		if saved {
			count++

			observability.PostsIngested.WithLabelValues(ch.Username).Inc()
		}
	}

	if count > 0 {
		r.logger.Info().Str("channel", ch.Username).Int("count", count).Msg("Saved posts for channel")
	} else {
		r.logger.Debug().Str("channel", ch.Username).Msg("No new posts for channel")
	}

	if maxID > ch.LastMessageID {
		if err := r.database.SetChannelCursor(ctx, ch.ID, maxID); err != nil {
			r.logger.Error().Err(err).Str("channel", ch.Username).Int64("max_id", maxID).Msg("failed to update channel cursor")
		}
	}

	return count, nil
}

// handleFloodWait sleeps out a FLOOD_WAIT error. The bool result reports
// whether the error was a flood wait; the error result is non-nil only when
// the context ended during the wait.
func (r *Reader) handleFloodWait(ctx context.Context, err error, channel string) (bool, error) {
	floodErr, ok := tgerr.As(err)
	if !ok || floodErr.Type != "FLOOD_WAIT" {
		return false, nil
	}

	observability.ReaderFloodWaitSecondsTotal.WithLabelValues(channel).Add(float64(floodErr.Argument))
	r.logger.Warn().Int("seconds", floodErr.Argument).Str("channel", channel).Msg("flood wait")

	select {
	case <-ctx.Done():
		return true, ctx.Err() //nolint:wrapcheck
	case <-time.After(time.Duration(floodErr.Argument) * time.Second):
		return true, nil
	}
}

func historyMessages(history tg.MessagesMessagesClass) []tg.MessageClass {
	switch h := history.(type) {
	case *tg.MessagesMessages:
		return h.Messages
	case *tg.MessagesMessagesSlice:
		return h.Messages
	case *tg.MessagesChannelMessages:
		return h.Messages
	default:
		return nil
	}
}

// downloadMedia fetches the post's photo or video payload so the pipeline
// can later resolve a reusable delivery reference from it. Oversized or
// unsupported media is skipped; the item falls back to forwarding.
func (r *Reader) downloadMedia(ctx context.Context, api *tg.Client, media tg.MessageMediaClass) (string, []byte, error) {
	var (
		mediaType    string
		fileLocation tg.InputFileLocationClass
	)

	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.Photo.(*tg.Photo)
		if !ok {
			return "", nil, nil
		}

		thumbSize := largestPhotoSize(photo.Sizes)
		if thumbSize == "" {
			return "", nil, nil
		}

		mediaType = domain.MediaPhoto
		fileLocation = &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     thumbSize,
		}

	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return "", nil, nil
		}

		if !strings.HasPrefix(doc.MimeType, "video/") || doc.Size > maxVideoBytes {
			return "", nil, nil
		}

		mediaType = domain.MediaVideo
		fileLocation = &tg.InputDocumentFileLocation{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}

	default:
		return "", nil, nil
	}

	buf := new(bytes.Buffer)
	if _, err := downloader.NewDownloader().Download(api, fileLocation).Stream(ctx, buf); err != nil {
		return "", nil, fmt.Errorf("download media: %w", err)
	}

	if mediaType == domain.MediaPhoto && buf.Len() > maxPhotoBytes {
		return "", nil, nil
	}

	return mediaType, buf.Bytes(), nil
}

func largestPhotoSize(sizes []tg.PhotoSizeClass) string {
	var (
		thumbSize string
		maxArea   int
	)

	for _, size := range sizes {
		switch s := size.(type) {
		case *tg.PhotoSize:
			if s.W*s.H > maxArea {
				maxArea = s.W * s.H
				thumbSize = s.Type
			}
		case *tg.PhotoSizeProgressive:
			if s.W*s.H > maxArea {
				maxArea = s.W * s.H
				thumbSize = s.Type
			}
		}
	}

	return thumbSize
}
