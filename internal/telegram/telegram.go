package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrFileTooLarge is returned by DownloadFile when the file exceeds the caller's limit.
var ErrFileTooLarge = errors.New("file is too large")

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()

	SendMessage(chatID int64, text string) (int, error)
	SendMarkdown(chatID int64, text string) (int, error)
	SendPhotoByURL(chatID int64, url, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (int, error)
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error

	// DownloadFile fetches an uploaded file, failing when it is larger than maxBytes.
	DownloadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error)
}
