package commandimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/pkg/formatter"
)

const (
	feedPageSize     = 5
	maxCaptionRunes  = 250
	maxPromptRunes   = 150
	maxCommentRunes  = 100
	commentsPerCard  = 2
	actionToggleLike = "like"
	actionDeletePost = "del"
)

type callbackData struct {
	Action string `json:"a"`
	PostID string `json:"p"`
}

func (c *CommandImpl) handleFeed(ctx context.Context, entry *session.Entry, chatID int64, args string) {
	page := 1
	if s := strings.TrimSpace(args); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			c.reply(chatID, "Usage: /feed [page]")
			return
		}
		page = n
	}

	// Later pages keep the view the first page was cut from.
	if page == 1 {
		if err := entry.Feed.Refresh(ctx); err != nil {
			c.fail(chatID, "feed", err)
			return
		}
	}

	posts, err := entry.Feed.List(ctx)
	if err != nil {
		c.fail(chatID, "feed", err)
		return
	}

	c.sendPosts(chatID, entry, posts, page, "The feed is empty. Send a photo to share the first post!",
		fmt.Sprintf("/feed %d", page+1))
}

func (c *CommandImpl) handleExplore(ctx context.Context, entry *session.Entry, chatID int64, args string) {
	if err := entry.Feed.Refresh(ctx); err != nil {
		c.fail(chatID, "explore", err)
		return
	}

	posts, err := entry.Feed.Explore(ctx, parseExploreArgs(args))
	if err != nil {
		c.fail(chatID, "explore", err)
		return
	}

	c.sendPosts(chatID, entry, posts, 1, "No posts match. Try another style or search.", "")
}

func (c *CommandImpl) handleMine(ctx context.Context, entry *session.Entry, chatID int64) {
	actor, ok := entry.Identity.CurrentActor()
	if !ok {
		c.reply(chatID, "🔒 Use /login or /signup first.")
		return
	}

	posts, err := entry.Feed.ByAuthor(ctx, actor.ID)
	if err != nil {
		c.fail(chatID, "mine", err)
		return
	}

	c.sendPosts(chatID, entry, posts, 1, "You have not shared anything yet. Send a photo to start!", "")
}

// parseExploreArgs reads "[style] [search...]". A first word naming a style filters by it.
func parseExploreArgs(args string) feed.ExploreFilter {
	fields := strings.Fields(args)

	var filter feed.ExploreFilter
	if len(fields) > 0 {
		if kind, err := domain.ParseTransformation(fields[0]); err == nil {
			filter.Transformation = kind
			fields = fields[1:]
		}
	}
	filter.Search = strings.Join(fields, " ")
	return filter
}

func (c *CommandImpl) sendPosts(chatID int64, entry *session.Entry, posts []domain.Post, page int, empty, next string) {
	if len(posts) == 0 {
		c.reply(chatID, empty)
		return
	}

	start := (page - 1) * feedPageSize
	if start >= len(posts) {
		c.reply(chatID, "No more posts.")
		return
	}
	end := min(start+feedPageSize, len(posts))

	viewer, _ := entry.Identity.CurrentActor()
	for _, p := range posts[start:end] {
		c.sendPost(chatID, p, viewer.ID)
	}

	if end < len(posts) {
		hint := fmt.Sprintf("Showing %d-%d of %d.", start+1, end, len(posts))
		if next != "" {
			hint += " " + next + " for more."
		}
		c.reply(chatID, hint)
	}
}

func (c *CommandImpl) sendPost(chatID int64, p domain.Post, viewerID string) {
	if _, err := c.Telegram.SendPhotoByURL(chatID, p.ImageURL, c.postCard(p), postKeyboard(p, viewerID)); err != nil {
		c.Logger.Error("Failed to send post", "chatID", chatID, "post_id", p.ID, "error", err)
	}
}

// postCard renders the MarkdownV2 caption shown under a post's photo.
func (c *CommandImpl) postCard(p domain.Post) string {
	esc := formatter.EscapeMarkdownV2

	var sb strings.Builder
	fmt.Fprintf(&sb, "*@%s* · %s\n", esc(p.AuthorDisplayName), esc(formatter.TimeAgo(p.CreatedAt, c.now())))
	if p.Caption != "" {
		sb.WriteString(esc(formatter.Truncate(p.Caption, maxCaptionRunes)))
		sb.WriteString("\n")
	}
	if p.Transformation != domain.TransformationOriginal && p.Transformation != "" {
		fmt.Fprintf(&sb, "_%s_", esc("#"+string(p.Transformation)))
		if p.Prompt != "" {
			fmt.Fprintf(&sb, " · %s", esc("prompt: "+formatter.Truncate(p.Prompt, maxPromptRunes)))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "❤️ %s · 💬 %s\n", esc(formatter.Likes(p.LikeCount)), esc(commentCount(len(p.Comments))))

	shown := p.Comments[max(len(p.Comments)-commentsPerCard, 0):]
	for _, cm := range shown {
		fmt.Fprintf(&sb, "*%s*: %s\n", esc(cm.AuthorDisplayName), esc(formatter.Truncate(cm.Content, maxCommentRunes)))
	}

	fmt.Fprintf(&sb, "`%s`", p.ID)
	return sb.String()
}

func commentCount(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return formatter.FormatNumber(n) + " comments"
}

func postKeyboard(p domain.Post, viewerID string) *tgbotapi.InlineKeyboardMarkup {
	label := "❤️ Like"
	if p.LikedByMe {
		label = "💔 Unlike"
	}

	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(label, encodeCallback(actionToggleLike, p.ID)),
	}
	if viewerID != "" && p.AuthorID == viewerID {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", encodeCallback(actionDeletePost, p.ID)))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)
	return &keyboard
}

func encodeCallback(action, postID string) string {
	data, _ := json.Marshal(callbackData{Action: action, PostID: postID})
	return string(data)
}
