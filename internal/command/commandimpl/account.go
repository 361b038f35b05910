package commandimpl

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/session"
)

func (c *CommandImpl) handleSignup(ctx context.Context, entry *session.Entry, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	defer c.forgetCredentials(msg)

	fields := strings.Fields(args)
	if len(fields) < 3 {
		c.reply(chatID, "Usage: /signup <email> <password> <username> [full name]")
		return
	}

	in := identity.SignupInput{
		Email:    fields[0],
		Password: fields[1],
		Username: fields[2],
		FullName: strings.Join(fields[3:], " "),
	}

	profile, err := entry.Identity.Signup(ctx, in)
	if err != nil {
		c.fail(chatID, "signup", err)
		return
	}

	c.reply(chatID, fmt.Sprintf("✅ Welcome to ArtFeed, @%s! Send a photo to share your first post.", profile.Username))
}

func (c *CommandImpl) handleLogin(ctx context.Context, entry *session.Entry, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	defer c.forgetCredentials(msg)

	fields := strings.Fields(args)
	if len(fields) != 2 {
		c.reply(chatID, "Usage: /login <email> <password>")
		return
	}

	profile, err := entry.Identity.Login(ctx, fields[0], fields[1])
	if err != nil {
		c.fail(chatID, "login", err)
		return
	}

	c.reply(chatID, fmt.Sprintf("✅ Welcome back, @%s!", profile.Username))
}

// forgetCredentials removes the message carrying a password from the chat history.
func (c *CommandImpl) forgetCredentials(msg *tgbotapi.Message) {
	if err := c.Telegram.DeleteMessage(msg.Chat.ID, msg.MessageID); err != nil {
		c.Logger.Warn("Failed to delete credentials message", "chatID", msg.Chat.ID, "error", err)
	}
}

func (c *CommandImpl) handleLogout(entry *session.Entry, chatID int64) {
	if _, ok := entry.Identity.CurrentActor(); !ok {
		c.reply(chatID, "You are not signed in.")
		return
	}
	entry.Identity.Logout()
	c.reply(chatID, "👋 Signed out.")
}

func (c *CommandImpl) handleProfile(ctx context.Context, entry *session.Entry, chatID int64) {
	actor, ok := entry.Identity.CurrentActor()
	if !ok {
		c.reply(chatID, "🔒 Use /login or /signup first.")
		return
	}

	profile, err := c.Accounts.Profile(ctx, actor.ID)
	if err != nil {
		c.fail(chatID, "profile", err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 @%s\n", profile.Username)
	if profile.FullName != "" {
		fmt.Fprintf(&sb, "Name: %s\n", profile.FullName)
	}
	fmt.Fprintf(&sb, "Email: %s\n", profile.Email)
	if profile.Bio != "" {
		fmt.Fprintf(&sb, "Bio: %s\n", profile.Bio)
	}
	if profile.Website != "" {
		fmt.Fprintf(&sb, "Website: %s\n", profile.Website)
	}
	fmt.Fprintf(&sb, "Member since %s", profile.CreatedAt.Format("Jan 2, 2006"))

	c.reply(chatID, sb.String())
}

func (c *CommandImpl) handleBio(ctx context.Context, entry *session.Entry, chatID int64, args string) {
	actor, ok := entry.Identity.CurrentActor()
	if !ok {
		c.reply(chatID, "🔒 Use /login or /signup first.")
		return
	}

	bio := strings.TrimSpace(args)
	if _, err := c.Accounts.UpdateProfile(ctx, actor.ID, identity.ProfileUpdate{Bio: &bio}); err != nil {
		c.fail(chatID, "bio", err)
		return
	}

	if bio == "" {
		c.reply(chatID, "✅ Bio cleared.")
		return
	}
	c.reply(chatID, "✅ Bio updated.")
}
