package ratelimit

import (
	"sync"
	"time"

	"github.com/orgball2608/artfeed-bot/pkg/config"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

// Limiter decides whether a caller, identified by key, may run another command.
type Limiter interface {
	Allow(key string) bool
}

// InMemoryLimiter keeps one token bucket per key.
type InMemoryLimiter struct {
	buckets map[string]*rate.Limiter
	mu      sync.Mutex
	r       rate.Limit // token refill rate
	b       int        // bucket size
}

// NewInMemoryLimiter allows requests per period with the given burst.
// Example: NewInMemoryLimiter(1, 5*time.Second, 3) allows one command every 5 seconds, three in a row.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
	}
}

func NewFromConfig(cfg *config.Config) *InMemoryLimiter {
	return NewInMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst)
}

func (l *InMemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.buckets[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.buckets[key] = limiter
	}

	return limiter.Allow()
}

var Module = fx.Module("ratelimit",
	fx.Provide(
		fx.Annotate(
			NewFromConfig,
			fx.As(new(Limiter)),
		),
	),
)
