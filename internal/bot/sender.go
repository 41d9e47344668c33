package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// Telegram hard limits: 4096 for messages, 1024 for media captions.
// A small margin is kept for the hashtag line.
const (
	maxMessageLen = 4000
	maxCaptionLen = 1000
)

// SendNews delivers one classified item to a single recipient. Text is
// translated into the recipient's language when it differs from the source.
// Items whose media never resolved to a file_id are forwarded from the
// source channel instead.
func (b *Bot) SendNews(ctx context.Context, recipient domain.Subscriber, item *domain.NewsItem) error {
	if item.MediaType != "" && !item.HasResolvedMedia() {
		return b.forwardOriginal(recipient, item)
	}

	text := item.Text
	if b.translator != nil {
		text = b.translator.Translate(ctx, text, recipient.Language)
	}

	text = "#" + item.Category + "\n\n" + text

	if item.HasResolvedMedia() {
		return b.sendMedia(recipient.TelegramID, item, text)
	}

	for _, part := range splitText(text, maxMessageLen) {
		if _, err := b.api.Send(tgbotapi.NewMessage(recipient.TelegramID, part)); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	return nil
}

func (b *Bot) sendMedia(chatID int64, item *domain.NewsItem, text string) error {
	parts := splitText(text, maxCaptionLen)
	caption := parts[0]

	var msg tgbotapi.Chattable

	switch item.MediaType {
	case domain.MediaPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(item.MediaFileID))
		photo.Caption = caption
		msg = photo
	case domain.MediaVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(item.MediaFileID))
		video.Caption = caption
		msg = video
	default:
		return fmt.Errorf("unsupported media type %q", item.MediaType)
	}

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send %s: %w", item.MediaType, err)
	}

	// Overflow that did not fit into the caption follows as plain messages.
	for _, part := range parts[1:] {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return fmt.Errorf("send caption overflow: %w", err)
		}
	}

	return nil
}

func (b *Bot) forwardOriginal(recipient domain.Subscriber, item *domain.NewsItem) error {
	forward := tgbotapi.NewForward(recipient.TelegramID, channelChatID(item.ChannelID), int(item.MessageID))
	if _, err := b.api.Send(forward); err != nil {
		return fmt.Errorf("forward original post: %w", err)
	}

	return nil
}

// channelChatID converts a bare MTProto channel ID into the -100-prefixed
// chat ID the Bot API expects.
func channelChatID(channelID int64) int64 {
	return -1000000000000 - channelID
}

// splitText breaks text into chunks of at most limit runes, preferring
// word boundaries. Always returns at least one element.
func splitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string

	remaining := text

	for utf8.RuneCountInString(remaining) > limit {
		runes := []rune(remaining)
		cut := limit

		for i := limit; i > limit/2; i-- {
			if runes[i] == ' ' || runes[i] == '\n' {
				cut = i

				break
			}
		}

		parts = append(parts, strings.TrimSpace(string(runes[:cut])))
		remaining = strings.TrimSpace(string(runes[cut:]))
	}

	if remaining != "" {
		parts = append(parts, remaining)
	}

	return parts
}
