package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/session"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

const (
	actorCtxKey   = "actor"
	sessionCtxKey = "session"
)

var (
	ErrMissingHeader = errors.New("missing authorization header")
	ErrInvalidFormat = errors.New("invalid authorization header")
	ErrEmptyToken    = errors.New("empty token")
)

// ExtractBearerToken extracts the Bearer token from the Authorization header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidFormat
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// bearerAuth verifies the token and attaches the actor's session to the request.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c)
		if err != nil {
			s.abortWithError(c, apperrors.Unauthorized(err.Error()))
			return
		}

		actor, err := s.tokens.Parse(token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}

		c.Set(actorCtxKey, actor)
		c.Set(sessionCtxKey, s.sessions.Open("api:"+actor.ID, &actor))
		c.Next()
	}
}

func currentActor(c *gin.Context) domain.Actor {
	return c.MustGet(actorCtxKey).(domain.Actor)
}

func currentSession(c *gin.Context) *session.Entry {
	return c.MustGet(sessionCtxKey).(*session.Entry)
}

func clientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

func actorKey(c *gin.Context) string {
	return "api:" + currentActor(c).ID
}

func (s *Server) rateLimit(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(key(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorInfo{
				Code:    "RATE_LIMITED",
				Message: "too many requests",
			}})
			return
		}
		c.Next()
	}
}

// bodyLimit rejects bodies over maxBytes before they are read.
func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: errorInfo{
				Code:    "REQUEST_TOO_LARGE",
				Message: "request body exceeds maximum allowed size",
			}})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestDeadline(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.Info("API request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
