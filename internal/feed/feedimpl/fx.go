package feedimpl

import (
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/repositories/comment"
	"github.com/orgball2608/artfeed-bot/internal/repositories/like"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	"github.com/orgball2608/artfeed-bot/internal/storage"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

type FactoryOpts struct {
	fx.In

	Config   *config.Config
	Posts    post.Repository
	Comments comment.Repository
	Likes    like.Repository
	Blob     storage.Blob
	Logger   logger.Logger
}

// Factory wires the shared collaborators into a Store per session.
type Factory struct {
	opts FactoryOpts
}

var _ feed.Factory = (*Factory)(nil)

func NewFactory(opts FactoryOpts) *Factory {
	return &Factory{opts: opts}
}

func (f *Factory) New(provider identity.Provider) feed.Store {
	return New(Opts{
		Identity:       provider,
		Posts:          f.opts.Posts,
		Comments:       f.opts.Comments,
		Likes:          f.opts.Likes,
		Blob:           f.opts.Blob,
		Logger:         f.opts.Logger,
		MaxUploadBytes: f.opts.Config.Feed.MaxUploadBytes,
	})
}

var Module = fx.Module("feed",
	fx.Provide(
		fx.Annotate(
			NewFactory,
			fx.As(new(feed.Factory)),
		),
	),
)
