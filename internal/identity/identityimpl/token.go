package identityimpl

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

type claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ identity.Tokens = (*TokenManager)(nil)

func NewTokenManager(cfg *config.Config) (*TokenManager, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	issuer := cfg.Auth.Issuer
	if issuer == "" {
		issuer = "artfeed"
	}
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &TokenManager{
		secret: []byte(cfg.Auth.JWTSecret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *TokenManager) Sign(actor domain.Actor) (string, error) {
	now := m.now()
	c := claims{
		Name: actor.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actor.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Parse(tokenString string) (domain.Actor, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Actor{}, apperrors.Unauthorized("invalid or expired token")
	}
	if c.Subject == "" {
		return domain.Actor{}, apperrors.Unauthorized("token missing sub claim")
	}

	return domain.Actor{ID: c.Subject, DisplayName: c.Name}, nil
}
