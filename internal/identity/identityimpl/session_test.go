package identityimpl

import (
	"context"
	"testing"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	mock_identity "github.com/orgball2608/artfeed-bot/internal/identity/mocks"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSession_LoginLogoutNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock_identity.NewMockAccounts(ctrl)
	s := NewSession(accounts)
	ctx := context.Background()

	var events []*domain.Actor
	unsubscribe := s.OnAuthStateChange(func(a *domain.Actor) {
		// Listeners may read the session without deadlocking.
		_, _ = s.CurrentActor()
		events = append(events, a)
	})

	_, ok := s.CurrentActor()
	assert.False(t, ok)

	accounts.EXPECT().Login(ctx, "m@example.com", "secret1").
		Return(&domain.Profile{ID: "u1", Username: "mira"}, nil)

	_, err := s.Login(ctx, "m@example.com", "secret1")
	require.NoError(t, err)

	actor, ok := s.CurrentActor()
	require.True(t, ok)
	assert.Equal(t, domain.Actor{ID: "u1", DisplayName: "mira"}, actor)

	s.Logout()
	s.Logout()

	require.Len(t, events, 2)
	assert.Equal(t, "u1", events[0].ID)
	assert.Nil(t, events[1])

	unsubscribe()
	s.Restore(domain.Actor{ID: "u2"})
	assert.Len(t, events, 2)
}

func TestSession_FailedLoginKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock_identity.NewMockAccounts(ctrl)
	s := NewSession(accounts)
	ctx := context.Background()

	calls := 0
	s.OnAuthStateChange(func(*domain.Actor) { calls++ })

	accounts.EXPECT().Login(ctx, "m@example.com", "bad").Return(nil, apperrors.Unauthorized("invalid email or password"))

	_, err := s.Login(ctx, "m@example.com", "bad")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, ok := s.CurrentActor()
	assert.False(t, ok)
	assert.Zero(t, calls)
}

func TestSession_RestoreSameActorIsQuiet(t *testing.T) {
	s := NewSession(nil)

	calls := 0
	s.OnAuthStateChange(func(*domain.Actor) { calls++ })

	s.Restore(domain.Actor{ID: "u1", DisplayName: "mira"})
	s.Restore(domain.Actor{ID: "u1", DisplayName: "mira"})
	assert.Equal(t, 1, calls)

	s.Restore(domain.Actor{ID: "u2", DisplayName: "kai"})
	assert.Equal(t, 2, calls)
}
