package telegramimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/telegram"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
)

// SendMessage sends a plain text message to a chat
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	return tg.send(chatID, tgbotapi.NewMessage(chatID, text))
}

// SendMarkdown sends text that is already escaped for MarkdownV2
func (tg *TelegramImpl) SendMarkdown(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return tg.send(chatID, msg)
}

// SendPhotoByURL sends a photo by URL with a MarkdownV2 caption and optional buttons
func (tg *TelegramImpl) SendPhotoByURL(chatID int64, url, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdownV2
	if keyboard != nil {
		photo.ReplyMarkup = keyboard
	}
	return tg.send(chatID, photo)
}

func (tg *TelegramImpl) send(chatID int64, c tgbotapi.Chattable) (int, error) {
	sent, err := tg.TgBot.Send(c)
	if err != nil {
		tg.Logger.Error("Error sending message", "chatID", chatID, "error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Debug("Message sent", "chatID", chatID, "messageID", sent.MessageID)
	return sent.MessageID, nil
}

func (tg *TelegramImpl) DeleteMessage(chatID int64, messageID int) error {
	if _, err := tg.TgBot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (tg *TelegramImpl) AnswerCallback(callbackID, text string) error {
	// Request instead of Send: the API answers with a bool, not a Message.
	if _, err := tg.TgBot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}

// DownloadFile resolves a Telegram file id and downloads its bytes
func (tg *TelegramImpl) DownloadFile(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	url, err := tg.TgBot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := tg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer safeClose(resp.Body, tg.Logger)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, telegram.ErrFileTooLarge
	}
	return data, nil
}

// safeClose safely closes an io.ReadCloser and logs any errors
func safeClose(closer io.ReadCloser, logger logger.Logger) {
	if err := closer.Close(); err != nil {
		logger.Error("Error closing response body", "error", err)
	}
}
