package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/internal/telegram"
)

func isImageDocument(doc *tgbotapi.Document) bool {
	return doc != nil && strings.HasPrefix(doc.MimeType, "image/")
}

// handleUpload turns a photo message into a post. The caption may carry a style
// hashtag and a "prompt:" line.
func (c *CommandImpl) handleUpload(ctx context.Context, entry *session.Entry, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	actor, ok := entry.Identity.CurrentActor()
	if !ok {
		c.reply(chatID, "🔒 Use /login or /signup before sharing photos.")
		return
	}

	fileID, size := largestImage(msg)
	if int64(size) > c.maxUploadBytes {
		c.reply(chatID, fmt.Sprintf("⚠️ The image is too large. The limit is %d MB.", c.maxUploadBytes>>20))
		return
	}

	data, err := c.Telegram.DownloadFile(ctx, fileID, c.maxUploadBytes)
	if err != nil {
		if errors.Is(err, telegram.ErrFileTooLarge) {
			c.reply(chatID, fmt.Sprintf("⚠️ The image is too large. The limit is %d MB.", c.maxUploadBytes>>20))
			return
		}
		c.Logger.Error("Failed to download photo", "chatID", chatID, "error", err)
		c.reply(chatID, genericFailureMessage)
		return
	}

	parsed := parseCaption(msg.Caption)
	p, err := entry.Feed.CreatePost(ctx, feed.CreatePostInput{
		Image:          data,
		Caption:        parsed.Caption,
		Transformation: parsed.Transformation,
		Prompt:         parsed.Prompt,
	})
	if err != nil {
		c.fail(chatID, "upload", err)
		return
	}

	c.reply(chatID, "✅ Shared!")
	c.sendPost(chatID, p, actor.ID)
}

func largestImage(msg *tgbotapi.Message) (string, int) {
	if n := len(msg.Photo); n > 0 {
		// Telegram lists sizes from smallest to largest.
		photo := msg.Photo[n-1]
		return photo.FileID, photo.FileSize
	}
	return msg.Document.FileID, msg.Document.FileSize
}
