package identity

import (
	"context"

	"github.com/orgball2608/artfeed-bot/internal/domain"
)

// Provider reports who the current session acts as.
//
//go:generate go run go.uber.org/mock/mockgen -source=identity.go -destination=mocks/mock.go
type Provider interface {
	CurrentActor() (domain.Actor, bool)

	// OnAuthStateChange registers fn for every sign-in and sign-out; nil means signed out.
	OnAuthStateChange(fn func(actor *domain.Actor)) (unsubscribe func())
}

type SignupInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// ProfileUpdate carries the editable profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
	Website   *string
}

type Accounts interface {
	Signup(ctx context.Context, in SignupInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, error)
	Profile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.Profile, error)
}

// Tokens issues and verifies bearer tokens for an actor.
type Tokens interface {
	Sign(actor domain.Actor) (string, error)
	Parse(token string) (domain.Actor, error)
}
