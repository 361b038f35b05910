package commandimpl

import (
	"context"
	"encoding/json"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/pkg/formatter"
)

func (c *CommandImpl) handleLike(ctx context.Context, entry *session.Entry, chatID int64, args string) {
	postID := strings.TrimSpace(args)
	if postID == "" {
		c.reply(chatID, "Usage: /like <post_id>")
		return
	}

	p, err := c.toggleLike(ctx, entry, postID)
	if err != nil {
		c.fail(chatID, "like", err)
		return
	}
	c.reply(chatID, likeResult(p))
}

func (c *CommandImpl) toggleLike(ctx context.Context, entry *session.Entry, postID string) (domain.Post, error) {
	actor, _ := entry.Identity.CurrentActor()
	return entry.Feed.ToggleLike(ctx, postID, actor.ID)
}

func likeResult(p domain.Post) string {
	if p.LikedByMe {
		return "❤️ Liked. " + formatter.Likes(p.LikeCount)
	}
	return "💔 Like removed. " + formatter.Likes(p.LikeCount)
}

func (c *CommandImpl) handleComment(ctx context.Context, entry *session.Entry, chatID int64, args string) {
	postID, text, _ := strings.Cut(strings.TrimSpace(args), " ")
	if postID == "" {
		c.reply(chatID, "Usage: /comment <post_id> <text>")
		return
	}

	if _, err := entry.Feed.AddComment(ctx, postID, text); err != nil {
		c.fail(chatID, "comment", err)
		return
	}
	c.reply(chatID, "💬 Comment added.")
}

func (c *CommandImpl) handleDelete(ctx context.Context, entry *session.Entry, chatID int64, args string) {
	postID := strings.TrimSpace(args)
	if postID == "" {
		c.reply(chatID, "Usage: /delete <post_id>")
		return
	}

	actor, _ := entry.Identity.CurrentActor()
	if err := entry.Feed.DeletePost(ctx, postID, actor.ID); err != nil {
		c.fail(chatID, "delete", err)
		return
	}
	c.reply(chatID, "🗑 Post deleted.")
}

func (c *CommandImpl) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil || q.Message.Chat == nil {
		c.answer(q.ID, "")
		return
	}

	chatID := q.Message.Chat.ID
	key := sessionKey(chatID)
	if !c.Limiter.Allow(key) {
		c.answer(q.ID, rateLimitedMessage)
		return
	}

	var data callbackData
	if err := json.Unmarshal([]byte(q.Data), &data); err != nil || data.PostID == "" {
		c.Logger.Error("Failed to unmarshal callback data", "data", q.Data, "error", err)
		c.answer(q.ID, "Unknown action")
		return
	}

	entry := c.Sessions.Open(key, nil)

	switch data.Action {
	case actionToggleLike:
		p, err := c.toggleLike(ctx, entry, data.PostID)
		if err != nil {
			c.answer(q.ID, userMessage(err))
			return
		}
		c.answer(q.ID, likeResult(p))
	case actionDeletePost:
		actor, _ := entry.Identity.CurrentActor()
		if err := entry.Feed.DeletePost(ctx, data.PostID, actor.ID); err != nil {
			c.answer(q.ID, userMessage(err))
			return
		}
		c.answer(q.ID, "🗑 Post deleted.")
		if err := c.Telegram.DeleteMessage(chatID, q.Message.MessageID); err != nil {
			c.Logger.Warn("Failed to remove deleted post card", "chatID", chatID, "error", err)
		}
	default:
		c.answer(q.ID, "Unknown action")
	}
}

func (c *CommandImpl) answer(callbackID, text string) {
	if err := c.Telegram.AnswerCallback(callbackID, text); err != nil {
		c.Logger.Error("Failed to answer callback", "error", err)
	}
}
