package s3impl

import (
	"context"

	"github.com/orgball2608/artfeed-bot/internal/storage"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/orgball2608/artfeed-bot/pkg/retry"
	"go.uber.org/fx"
)

var Module = fx.Module("s3_storage",
	fx.Provide(
		New,
		func(s *Storage) storage.Blob { return s },
	),
	fx.Invoke(func(lc fx.Lifecycle, s *Storage, log logger.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return retry.Do(ctx, log, "ensure bucket", func() error {
					return s.EnsureBucket(ctx)
				}, retry.StartupConfig())
			},
		})
	}),
)
