package fx

import (
	"github.com/orgball2608/artfeed-bot/internal/repositories/comment"
	"github.com/orgball2608/artfeed-bot/internal/repositories/like"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	"github.com/orgball2608/artfeed-bot/internal/repositories/profile"
	"go.uber.org/fx"
)

var Module = fx.Options(
	profile.Module,
	post.Module,
	comment.Module,
	like.Module,
)
