package profile

import (
	"context"
	"errors"

	"github.com/orgball2608/artfeed-bot/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("profile already exists")
	ErrNotFound      = errors.New("profile not found")
)

// Update carries the editable profile fields; nil means unchanged.
type Update struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
	Website   *string
}

func (u Update) IsEmpty() bool {
	return u.FullName == nil && u.AvatarURL == nil && u.Bio == nil && u.Website == nil
}

//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=mocks/mock.go
type Repository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	Update(ctx context.Context, id string, update Update) (*domain.Profile, error)
}
