package identityimpl

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.Issuer = "artfeed-test"
	cfg.Auth.TokenTTL = time.Hour
	m, err := NewTokenManager(cfg)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager(&config.Config{})
	require.Error(t, err)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := newTestTokenManager(t)
	actor := domain.Actor{ID: "u1", DisplayName: "mira"}

	token, err := m.Sign(actor)
	require.NoError(t, err)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := newTestTokenManager(t)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Sign(domain.Actor{ID: "u1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	m := newTestTokenManager(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"iss": "artfeed-test",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	m := newTestTokenManager(t)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := other.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
