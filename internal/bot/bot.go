// Package bot is the subscriber-facing Telegram surface: registration,
// category selection, plan activation and news delivery.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/core/domain"
	"github.com/xabarchi/newsbot/internal/fanout"
	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/process/pipeline"
	"github.com/xabarchi/newsbot/internal/subscription"
	"github.com/xabarchi/newsbot/internal/translate"
)

type Repository interface {
	LatestItemByCategory(ctx context.Context, category string) (*domain.NewsItem, error)
	SetLanguage(ctx context.Context, subscriberID, language string) error
	CountUnprocessed(ctx context.Context) (int, error)
	CountSubscribers(ctx context.Context) (int, error)
	ItemCountsByCategory(ctx context.Context) (map[string]int, error)
}

// The bot is both the fan-out transport and the media resolver for the
// processing pipeline.
var (
	_ fanout.Sender          = (*Bot)(nil)
	_ pipeline.MediaResolver = (*Bot)(nil)
)

type Bot struct {
	cfg        *config.Config
	database   Repository
	subs       *subscription.Service
	translator *translate.Translator
	api        *tgbotapi.BotAPI
	logger     *zerolog.Logger
}

func New(
	cfg *config.Config,
	database Repository,
	subs *subscription.Service,
	translator *translate.Translator,
	logger *zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		cfg:        cfg,
		database:   database,
		subs:       subs,
		translator: translator,
		api:        api,
		logger:     logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("bot", b.api.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()

			return ctx.Err() //nolint:wrapcheck
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)

				continue
			}

			if update.Message == nil || update.Message.From == nil {
				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send keyboard")
	}
}

func (b *Bot) answerCallback(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(queryID, text)); err != nil {
		b.logger.Warn().Err(err).Msg("failed to answer callback")
	}
}
