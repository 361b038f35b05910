package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Logger is the key/value logger shared by every component.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithComponent(name string) Logger
}

type Opts struct {
	Env       string
	Level     string
	SentryDSN string
	// Output defaults to stdout.
	Output io.Writer
}

type Impl struct {
	log *slog.Logger
}

var _ Logger = (*Impl)(nil)

// New builds a logger writing through zerolog, fanned out to sentry for errors when a DSN is set.
func New(opts Opts) *Impl {
	level := ParseLevel(opts.Level)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var zl zerolog.Logger
	if opts.Env == "production" {
		zl = zerolog.New(out).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err != nil {
			zl.Error().Err(err).Msg("Failed to init sentry, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{log: slog.New(slogmulti.Fanout(handlers...))}
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() *Impl {
	return &Impl{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Impl) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *Impl) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *Impl) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

func (l *Impl) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *Impl) With(args ...any) Logger {
	return &Impl{log: l.log.With(args...)}
}

func (l *Impl) WithComponent(name string) Logger {
	return l.With("component", name)
}

// Printf lets the logger act as fx's event printer.
func (l *Impl) Printf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

// Enabled reports whether the given level would be written.
func (l *Impl) Enabled(level slog.Level) bool {
	return l.log.Enabled(context.Background(), level)
}

// Flush waits for buffered sentry events to be delivered.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
