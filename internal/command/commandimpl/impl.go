package commandimpl

import (
	"time"

	"github.com/orgball2608/artfeed-bot/internal/command"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/ratelimit"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/internal/telegram"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

// Sessions hands out the per-chat identity and feed.
type Sessions interface {
	Open(key string, restore *domain.Actor) *session.Entry
	Close(key string)
}

type Opts struct {
	fx.In

	Telegram telegram.Client
	Sessions *session.Registry
	Accounts identity.Accounts
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config
}

type CommandImpl struct {
	Telegram telegram.Client
	Sessions Sessions
	Accounts identity.Accounts
	Limiter  ratelimit.Limiter
	Logger   logger.Logger

	maxUploadBytes int64
	now            func() time.Time
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Telegram:       opts.Telegram,
		Sessions:       opts.Sessions,
		Accounts:       opts.Accounts,
		Limiter:        opts.Limiter,
		Logger:         opts.Logger.WithComponent("Command"),
		maxUploadBytes: opts.Config.Feed.MaxUploadBytes,
		now:            time.Now,
	}
}

var _ command.Client = (*CommandImpl)(nil)

var Module = fx.Module("command",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(command.Client)),
		),
	),
)
