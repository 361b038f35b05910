package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/ratelimit"
	"github.com/orgball2608/artfeed-bot/internal/session"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

const (
	readHeaderTimeout = 10 * time.Second
	requestTimeout    = 30 * time.Second
	// multipart framing on top of the image itself
	uploadOverheadBytes = 1 << 20
)

// Sessions hands out the per-actor identity and feed.
type Sessions interface {
	Open(key string, restore *domain.Actor) *session.Entry
}

type Opts struct {
	fx.In

	Config   *config.Config
	Tokens   identity.Tokens
	Accounts identity.Accounts
	Sessions *session.Registry
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
}

type Server struct {
	tokens         identity.Tokens
	accounts       identity.Accounts
	sessions       Sessions
	limiter        ratelimit.Limiter
	logger         logger.Logger
	maxUploadBytes int64

	engine *gin.Engine
	srv    *http.Server
}

func New(opts Opts) *Server {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := newServer(opts.Tokens, opts.Accounts, opts.Sessions, opts.Limiter, opts.Logger, opts.Config.Feed.MaxUploadBytes)
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func newServer(tokens identity.Tokens, accounts identity.Accounts, sessions Sessions,
	limiter ratelimit.Limiter, log logger.Logger, maxUploadBytes int64) *Server {
	s := &Server{
		tokens:         tokens,
		accounts:       accounts,
		sessions:       sessions,
		limiter:        limiter,
		logger:         log.WithComponent("API"),
		maxUploadBytes: maxUploadBytes,
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	go func() {
		s.logger.Info("HTTP server started", "addr", s.srv.Addr)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.srv.Shutdown(ctx)
}

var Module = fx.Module("api",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Server) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error { return s.Start() },
			OnStop:  s.Stop,
		})
	}),
)
