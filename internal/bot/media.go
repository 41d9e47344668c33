package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// ResolveFileID uploads a post's downloaded media once to an admin chat and
// returns the resulting file_id, so fan-out can reference the cached file
// instead of re-uploading bytes per recipient. The staging message is
// deleted afterwards.
func (b *Bot) ResolveFileID(ctx context.Context, post *domain.RawPost) (string, error) {
	if len(post.MediaData) == 0 {
		return "", errors.New("post carries no media payload")
	}

	if len(b.cfg.AdminIDs) == 0 {
		return "", errors.New("no admin chat configured for media staging")
	}

	if err := ctx.Err(); err != nil {
		return "", err //nolint:wrapcheck
	}

	stagingChat := b.cfg.AdminIDs[0]
	file := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("%s-%d", post.ChannelUsername, post.MessageID),
		Bytes: post.MediaData,
	}

	var msg tgbotapi.Chattable

	switch post.MediaType {
	case domain.MediaPhoto:
		photo := tgbotapi.NewPhoto(stagingChat, file)
		photo.DisableNotification = true
		msg = photo
	case domain.MediaVideo:
		video := tgbotapi.NewVideo(stagingChat, file)
		video.DisableNotification = true
		msg = video
	default:
		return "", fmt.Errorf("unsupported media type %q", post.MediaType)
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("stage media upload: %w", err)
	}

	fileID := extractFileID(&sent)

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(stagingChat, sent.MessageID)); err != nil {
		b.logger.Warn().Err(err).Int("message_id", sent.MessageID).Msg("failed to delete staging message")
	}

	if fileID == "" {
		return "", errors.New("staged message carries no file reference")
	}

	return fileID, nil
}

func extractFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		// Photo sizes are ordered smallest first.
		return msg.Photo[len(msg.Photo)-1].FileID
	}

	if msg.Video != nil {
		return msg.Video.FileID
	}

	return ""
}
