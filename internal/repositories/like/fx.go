package like

import (
	"go.uber.org/fx"
)

var Module = fx.Module("like_repository",
	fx.Provide(
		fx.Annotate(
			NewPgxRepository,
			fx.As(new(Repository)),
		),
	),
)
