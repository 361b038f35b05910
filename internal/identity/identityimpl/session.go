package identityimpl

import (
	"context"
	"sync"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity"
)

// Session is the identity of one chat or API client. It implements identity.Provider.
type Session struct {
	accounts identity.Accounts

	mu        sync.Mutex
	actor     *domain.Actor
	listeners map[int]func(*domain.Actor)
	nextID    int
}

var _ identity.Provider = (*Session)(nil)

func NewSession(accounts identity.Accounts) *Session {
	return &Session{
		accounts:  accounts,
		listeners: make(map[int]func(*domain.Actor)),
	}
}

func (s *Session) CurrentActor() (domain.Actor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.actor == nil {
		return domain.Actor{}, false
	}
	return *s.actor, true
}

func (s *Session) OnAuthStateChange(fn func(*domain.Actor)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	p, err := s.accounts.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(p.Actor())
	return p, nil
}

// Signup creates the account and signs in as it.
func (s *Session) Signup(ctx context.Context, in identity.SignupInput) (*domain.Profile, error) {
	p, err := s.accounts.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	s.set(p.Actor())
	return p, nil
}

// Restore signs in as an actor already authenticated elsewhere, e.g. by a bearer token.
func (s *Session) Restore(actor domain.Actor) {
	s.set(actor)
}

func (s *Session) Logout() {
	s.mu.Lock()
	if s.actor == nil {
		s.mu.Unlock()
		return
	}
	s.actor = nil
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}

func (s *Session) set(actor domain.Actor) {
	s.mu.Lock()
	if s.actor != nil && *s.actor == actor {
		s.mu.Unlock()
		return
	}
	s.actor = &actor
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		a := actor
		fn(&a)
	}
}

// snapshot must be called with mu held.
func (s *Session) snapshot() []func(*domain.Actor) {
	out := make([]func(*domain.Actor), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
