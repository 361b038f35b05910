package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/orgball2608/artfeed-bot/internal/api"
	"github.com/orgball2608/artfeed-bot/internal/command"
	"github.com/orgball2608/artfeed-bot/internal/command/commandimpl"
	"github.com/orgball2608/artfeed-bot/internal/feed/feedimpl"
	"github.com/orgball2608/artfeed-bot/internal/identity/identityimpl"
	"github.com/orgball2608/artfeed-bot/internal/migrations"
	"github.com/orgball2608/artfeed-bot/internal/ratelimit"
	repositories "github.com/orgball2608/artfeed-bot/internal/repositories/fx"
	"github.com/orgball2608/artfeed-bot/internal/scheduler"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/internal/storage/s3impl"
	"github.com/orgball2608/artfeed-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/orgball2608/artfeed-bot/pkg/pgx"
	"go.uber.org/fx"
)

const botRestartDelay = 5 * time.Second

// Module assembles the service. The Telegram bot is wired only when a token is configured.
func Module(cfg *config.Config) fx.Option {
	options := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			logger.FxOption,
			pgx.New,
		),
		fx.Invoke(migrate),
		repositories.Module,
		s3impl.Module,
		identityimpl.Module,
		feedimpl.Module,
		session.Module,
		ratelimit.Module,
		scheduler.Module,
		api.Module,
	}

	if cfg.Telegram.Token != "" {
		options = append(options,
			telegramimpl.Module,
			commandimpl.Module,
			fx.Invoke(runBot),
		)
	}

	return fx.Options(options...)
}

// migrate applies pending migrations once the pool has connected.
func migrate(lc fx.Lifecycle, cfg *config.Config, log logger.Logger, _ *pgxpool.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			db, err := sql.Open("postgres", cfg.GetDSN())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			if err := migrations.Up(ctx, db); err != nil {
				return err
			}
			log.Info("Database migrations applied")
			return nil
		},
	})
}

// runBot keeps the Telegram command handler running until the app stops.
func runBot(lc fx.Lifecycle, log logger.Logger, cmd command.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				for {
					err := cmd.HandleCommand(ctx)
					if ctx.Err() != nil {
						return
					}
					log.Error("Command handler stopped, restarting", "error", err)

					select {
					case <-ctx.Done():
						return
					case <-time.After(botRestartDelay):
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return errors.New("command handler did not stop in time")
			}
		},
	})
}
