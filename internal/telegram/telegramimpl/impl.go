package telegramimpl

import (
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/telegram"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot      *tgbotapi.BotAPI
	Logger     logger.Logger
	httpClient *http.Client
}

func New(opts Opts) (*TelegramImpl, error) {
	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:      tgBot,
		Logger:     opts.Logger.WithComponent("Telegram"),
		httpClient: &http.Client{Timeout: time.Minute},
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)

var Module = fx.Module("telegram",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(telegram.Client)),
		),
	),
)
