package comment

import (
	"go.uber.org/fx"
)

var Module = fx.Module("comment_repository",
	fx.Provide(
		fx.Annotate(
			NewPgxRepository,
			fx.As(new(Repository)),
		),
	),
)
