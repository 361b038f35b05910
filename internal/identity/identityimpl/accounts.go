package identityimpl

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/repositories/profile"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)

type AccountsImpl struct {
	profiles   profile.Repository
	logger     logger.Logger
	bcryptCost int
}

type AccountsOpts struct {
	fx.In

	Profiles profile.Repository
	Logger   logger.Logger
}

var _ identity.Accounts = (*AccountsImpl)(nil)

func NewAccounts(opts AccountsOpts) *AccountsImpl {
	return &AccountsImpl{
		profiles:   opts.Profiles,
		logger:     opts.Logger.WithComponent("Accounts"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (a *AccountsImpl) Signup(ctx context.Context, in identity.SignupInput) (*domain.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidInput("a valid email is required")
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperrors.InvalidInput("username must be 3-30 letters, digits, '_' or '.'")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput("password must be at least 6 characters")
	}

	_, err := a.profiles.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperrors.InvalidInput("username is already taken")
	case !errors.Is(err, profile.ErrNotFound):
		return nil, apperrors.Dependency(err, "failed to check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	p := &domain.Profile{
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(hash),
	}
	if err := a.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, profile.ErrAlreadyExists) {
			return nil, apperrors.InvalidInput("email or username is already registered")
		}
		return nil, apperrors.Dependency(err, "failed to create profile")
	}

	a.logger.Info("Account created", "profile_id", p.ID, "username", p.Username)
	return p, nil
}

func (a *AccountsImpl) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	p, err := a.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, apperrors.Dependency(err, "failed to load profile")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return p, nil
}

func (a *AccountsImpl) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := a.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, apperrors.NotFound("profile not found")
		}
		return nil, apperrors.Dependency(err, "failed to load profile")
	}
	return p, nil
}

func (a *AccountsImpl) UpdateProfile(ctx context.Context, id string, update identity.ProfileUpdate) (*domain.Profile, error) {
	if update.Website != nil {
		w := strings.TrimSpace(*update.Website)
		if w != "" && !strings.HasPrefix(w, "http://") && !strings.HasPrefix(w, "https://") {
			return nil, apperrors.InvalidInput("website must start with http:// or https://")
		}
		update.Website = &w
	}

	p, err := a.profiles.Update(ctx, id, profile.Update{
		FullName:  update.FullName,
		AvatarURL: update.AvatarURL,
		Bio:       update.Bio,
		Website:   update.Website,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, apperrors.NotFound("profile not found")
		}
		return nil, apperrors.Dependency(err, "failed to update profile")
	}
	return p, nil
}
