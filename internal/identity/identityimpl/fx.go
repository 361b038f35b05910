package identityimpl

import (
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(
		fx.Annotate(
			NewAccounts,
			fx.As(new(identity.Accounts)),
		),
		fx.Annotate(
			NewTokenManager,
			fx.As(new(identity.Tokens)),
		),
	),
)
