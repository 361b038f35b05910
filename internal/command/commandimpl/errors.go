package commandimpl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

const genericFailureMessage = "Something went wrong. Please try again later."

// userMessage turns a feed or account error into something safe to show in chat.
func userMessage(err error) string {
	msg := sentence(apperrors.GetMessage(err))

	switch {
	case apperrors.IsUnauthorized(err):
		return "🔒 " + msg + ". Use /login or /signup first."
	case apperrors.IsForbidden(err):
		return "⛔ " + msg + "."
	case apperrors.IsInvalidInput(err):
		return "⚠️ " + msg + "."
	case apperrors.IsNotFound(err):
		return "🔍 " + msg + "."
	default:
		return genericFailureMessage
	}
}

func sentence(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// fail replies with the user facing form of err; dependency failures are also logged.
func (c *CommandImpl) fail(chatID int64, action string, err error) {
	if !apperrors.IsUnauthorized(err) && !apperrors.IsForbidden(err) &&
		!apperrors.IsInvalidInput(err) && !apperrors.IsNotFound(err) {
		c.Logger.Error("Command failed", "action", action, "chatID", chatID, "error", err)
	}
	c.reply(chatID, userMessage(err))
}
