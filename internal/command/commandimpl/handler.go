package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/session"
)

const helpMessage = `👋 Welcome to ArtFeed!

Share your photos with a style and see what others made.

ACCOUNT:
/signup <email> <password> <username> [full name] - Create an account and sign in.
/login <email> <password> - Sign in.
/logout - Sign out.
/profile - Show your profile.
/bio <text> - Update your bio.

FEED:
/feed [page] - Newest posts.
/explore [style] [search] - Filter by style and search captions, authors and prompts.
/mine - Your own posts.
/like <post_id> - Like or unlike a post.
/comment <post_id> <text> - Comment on a post.
/delete <post_id> - Delete one of your posts.

SHARING:
Send a photo with a caption. Add a style hashtag (#ghibli, #lowlight, #vintage, #cartoon) and optionally a line starting with "prompt:".

Type /help at any time to see this guide.`

const rateLimitedMessage = "⏳ You are sending commands too fast. Please wait a moment."

func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly. Restarting handler...")
				return errors.New("telegram updates channel closed")
			}

			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				c.handleUpdate(ctx, u)
			}(update)
		}
	}
}

func (c *CommandImpl) handleUpdate(ctx context.Context, u tgbotapi.Update) {
	if u.CallbackQuery != nil {
		c.handleCallback(ctx, u.CallbackQuery)
		return
	}

	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	chatID := msg.Chat.ID
	key := sessionKey(chatID)
	if !c.Limiter.Allow(key) {
		c.reply(chatID, rateLimitedMessage)
		return
	}

	entry := c.Sessions.Open(key, nil)

	switch {
	case msg.IsCommand():
		c.Logger.Info("Command received", "chatID", chatID, "command", msg.Command())
		if err := c.processCommand(ctx, entry, msg); err != nil {
			c.Logger.Error("Error processing command",
				"command", msg.Command(),
				"error", err)
		}
	case len(msg.Photo) > 0 || isImageDocument(msg.Document):
		c.Logger.Info("Photo received", "chatID", chatID)
		c.handleUpload(ctx, entry, msg)
	}
}

func (c *CommandImpl) processCommand(ctx context.Context, entry *session.Entry, msg *tgbotapi.Message) error {
	command := msg.Command()
	args := msg.CommandArguments()
	chatID := msg.Chat.ID

	switch command {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "signup":
		c.handleSignup(ctx, entry, msg, args)
	case "login":
		c.handleLogin(ctx, entry, msg, args)
	case "logout":
		c.handleLogout(entry, chatID)
	case "profile":
		c.handleProfile(ctx, entry, chatID)
	case "bio":
		c.handleBio(ctx, entry, chatID, args)
	case "feed":
		c.handleFeed(ctx, entry, chatID, args)
	case "explore":
		c.handleExplore(ctx, entry, chatID, args)
	case "mine":
		c.handleMine(ctx, entry, chatID)
	case "like":
		c.handleLike(ctx, entry, chatID, args)
	case "comment":
		c.handleComment(ctx, entry, chatID, args)
	case "delete":
		c.handleDelete(ctx, entry, chatID, args)
	default:
		_, err := c.Telegram.SendMessage(chatID, "Unknown command. Type /help to see the list of available commands.")
		return err
	}
	return nil
}

// reply sends plain text and only logs a failed send.
func (c *CommandImpl) reply(chatID int64, text string) {
	if _, err := c.Telegram.SendMessage(chatID, text); err != nil {
		c.Logger.Error("Failed to send reply", "chatID", chatID, "error", err)
	}
}
