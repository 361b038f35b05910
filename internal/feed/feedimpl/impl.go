package feedimpl

import (
	"sync"

	"github.com/google/uuid"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/repositories/comment"
	"github.com/orgball2608/artfeed-bot/internal/repositories/like"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	"github.com/orgball2608/artfeed-bot/internal/storage"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
)

const defaultMaxUploadBytes = 10 << 20

type Opts struct {
	Identity       identity.Provider
	Posts          post.Repository
	Comments       comment.Repository
	Likes          like.Repository
	Blob           storage.Blob
	Logger         logger.Logger
	MaxUploadBytes int64

	// NewID generates blob names; uuid.NewString when nil.
	NewID func() string
}

type Store struct {
	identity       identity.Provider
	posts          post.Repository
	comments       comment.Repository
	likes          like.Repository
	blob           storage.Blob
	logger         logger.Logger
	maxUploadBytes int64
	newID          func() string

	likeLocks   *keyedMutex
	unsubscribe func()

	mu       sync.Mutex
	items    []*domain.Post
	loaded   bool
	stale    bool
	authGen  uint64
	viewerID string
}

var _ feed.Store = (*Store)(nil)

func New(opts Opts) *Store {
	s := &Store{
		identity:       opts.Identity,
		posts:          opts.Posts,
		comments:       opts.Comments,
		likes:          opts.Likes,
		blob:           opts.Blob,
		logger:         opts.Logger.WithComponent("FeedStore"),
		maxUploadBytes: opts.MaxUploadBytes,
		newID:          opts.NewID,
		likeLocks:      newKeyedMutex(),
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	s.unsubscribe = s.identity.OnAuthStateChange(s.onAuthStateChange)
	return s
}

func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// onAuthStateChange marks the view stale when a different actor signs in.
// It runs on the provider's goroutine and does no I/O.
func (s *Store) onAuthStateChange(actor *domain.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authGen++
	if actor == nil {
		s.viewerID = ""
		for _, p := range s.items {
			p.LikedByMe = false
		}
		return
	}
	if actor.ID != s.viewerID {
		s.stale = true
	}
}

// find must be called with mu held.
func (s *Store) find(postID string) (int, *domain.Post) {
	for i, p := range s.items {
		if p.ID == postID {
			return i, p
		}
	}
	return -1, nil
}

func (s *Store) snapshot(keep func(*domain.Post) bool) []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Post, 0, len(s.items))
	for _, p := range s.items {
		if p.State != domain.PostVisible {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
