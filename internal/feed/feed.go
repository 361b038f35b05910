package feed

import (
	"context"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity"
)

type CreatePostInput struct {
	Image          []byte
	Caption        string
	Transformation domain.Transformation
	Prompt         string
}

// ExploreFilter narrows the feed. Zero values match everything.
type ExploreFilter struct {
	Transformation domain.Transformation
	Search         string
}

// Store is the per-session feed: an ordered, newest first view of the posts
// kept in sync with persistence. All returned values are copies.
//
//go:generate go run go.uber.org/mock/mockgen -source=feed.go -destination=mocks/mock.go
type Store interface {
	List(ctx context.Context) ([]domain.Post, error)

	// Refresh reloads the view so posts, likes and comments made by other
	// sessions show up.
	Refresh(ctx context.Context) error

	CreatePost(ctx context.Context, in CreatePostInput) (domain.Post, error)
	ToggleLike(ctx context.Context, postID, actorID string) (domain.Post, error)
	AddComment(ctx context.Context, postID, content string) (domain.Comment, error)
	DeletePost(ctx context.Context, postID, actorID string) error
	Explore(ctx context.Context, filter ExploreFilter) ([]domain.Post, error)
	ByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)

	// Close detaches the store from its identity provider.
	Close()
}

// Factory builds one Store per session.
type Factory interface {
	New(provider identity.Provider) Store
}
