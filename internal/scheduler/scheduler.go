package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

const reconcileTimeout = 5 * time.Minute

type SessionEvicter interface {
	EvictIdle(maxIdle time.Duration) int
}

type Opts struct {
	fx.In

	Config   *config.Config
	Posts    post.Repository
	Sessions *session.Registry
	Logger   logger.Logger
}

// Scheduler runs the background maintenance jobs.
type Scheduler struct {
	posts    post.Repository
	sessions SessionEvicter
	logger   logger.Logger

	reconcileCron string
	idleTimeout   time.Duration
	evictInterval time.Duration

	cron   gocron.Scheduler
	cancel context.CancelFunc
}

func New(opts Opts) *Scheduler {
	return newScheduler(opts.Config, opts.Posts, opts.Sessions, opts.Logger)
}

func newScheduler(cfg *config.Config, posts post.Repository, sessions SessionEvicter, log logger.Logger) *Scheduler {
	return &Scheduler{
		posts:         posts,
		sessions:      sessions,
		logger:        log.WithComponent("Scheduler"),
		reconcileCron: cfg.Feed.ReconcileCron,
		idleTimeout:   cfg.Session.IdleTimeout,
		evictInterval: cfg.Session.EvictInterval,
	}
}

func (s *Scheduler) Start() error {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	_, err = cron.NewJob(
		gocron.CronJob(s.reconcileCron, false),
		gocron.NewTask(func() { s.ReconcileLikeCounts(ctx) }),
		gocron.WithName("reconcile-like-counts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule like count reconciliation: %w", err)
	}

	if s.evictInterval > 0 {
		_, err = cron.NewJob(
			gocron.DurationJob(s.evictInterval),
			gocron.NewTask(s.EvictIdleSessions),
			gocron.WithName("evict-idle-sessions"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			return fmt.Errorf("failed to schedule session eviction: %w", err)
		}
	}

	s.cron = cron
	s.cancel = cancel
	cron.Start()

	s.logger.Info("Scheduler started", "reconcile_cron", s.reconcileCron, "evict_interval", s.evictInterval.String())
	return nil
}

func (s *Scheduler) Stop() error {
	if s.cron == nil {
		return nil
	}
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	s.cron = nil
	return nil
}

// ReconcileLikeCounts recomputes the cached posts.like_count from the likes relation.
func (s *Scheduler) ReconcileLikeCounts(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	fixed, err := s.posts.ReconcileLikeCounts(ctx)
	if err != nil {
		s.logger.Error("Failed to reconcile like counts", "error", err)
		return
	}
	s.logger.Info("Like counts reconciled", "posts_fixed", fixed)
}

func (s *Scheduler) EvictIdleSessions() {
	s.sessions.EvictIdle(s.idleTimeout)
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error { return s.Start() },
			OnStop:  func(context.Context) error { return s.Stop() },
		})
	}),
)
