package session

import (
	"sync"
	"time"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/identity/identityimpl"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

// Entry is one client's identity plus the feed it sees.
type Entry struct {
	Identity *identityimpl.Session
	Feed     feed.Store

	lastUsed time.Time
}

// Registry keeps an Entry per session key (chat id, actor id) and drops idle ones.
type Registry struct {
	accounts identity.Accounts
	factory  feed.Factory
	logger   logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

type Opts struct {
	fx.In

	Accounts identity.Accounts
	Factory  feed.Factory
	Logger   logger.Logger
}

func NewRegistry(opts Opts) *Registry {
	return &Registry{
		accounts: opts.Accounts,
		factory:  opts.Factory,
		logger:   opts.Logger.WithComponent("SessionRegistry"),
		now:      time.Now,
		entries:  make(map[string]*Entry),
	}
}

// Open returns the entry for key, creating it on first use. A non-nil restore
// signs the entry in as that actor, e.g. after a bearer token was verified.
func (r *Registry) Open(key string, restore *domain.Actor) *Entry {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		ident := identityimpl.NewSession(r.accounts)
		e = &Entry{
			Identity: ident,
			Feed:     r.factory.New(ident),
		}
		r.entries[key] = e
	}
	e.lastUsed = r.now()
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("Session opened", "key", key)
	}
	if restore != nil {
		e.Identity.Restore(*restore)
	}
	return e
}

func (r *Registry) Close(key string) {
	r.mu.Lock()
	e, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()

	if ok {
		e.Feed.Close()
	}
}

// EvictIdle closes every entry unused for longer than maxIdle and reports how many went.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Entry
	for key, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e)
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()

	for _, e := range idle {
		e.Feed.Close()
	}
	if len(idle) > 0 {
		r.logger.Info("Evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

var Module = fx.Module("session",
	fx.Provide(NewRegistry),
)
