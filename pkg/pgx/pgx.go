package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/orgball2608/artfeed-bot/pkg/retry"
	"go.uber.org/fx"
)

// Opts holds dependencies for creating a pgx pool.
type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// New creates a new pgxpool.Pool and manages its lifecycle.
func New(opts Opts) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(opts.Config.GetURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if opts.Config.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = opts.Config.Postgres.MaxConns
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	log := opts.Logger.WithComponent("Postgres")

	opts.LC.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				err := retry.Do(ctx, log, "postgres ping", func() error {
					return pool.Ping(ctx)
				}, retry.StartupConfig())
				if err != nil {
					return fmt.Errorf("failed to ping postgres: %w", err)
				}
				log.Info("Connected to postgres", "max_conns", poolCfg.MaxConns)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				pool.Close()
				return nil
			},
		},
	)

	return pool, nil
}
