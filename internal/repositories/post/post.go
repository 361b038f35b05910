package post

import (
	"context"
	"errors"

	"github.com/orgball2608/artfeed-bot/internal/domain"
)

var (
	ErrNotFound = errors.New("post not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// Create inserts the post and fills in the server-assigned ID and CreatedAt
	Create(ctx context.Context, post *domain.Post) error

	// List returns every post newest first, with like counts computed from the likes relation
	List(ctx context.Context) ([]*domain.Post, error)

	// GetByID returns a single post
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// Delete removes the post if it belongs to authorID; comments and likes cascade
	Delete(ctx context.Context, id string, authorID string) error

	// AdjustLikeCount moves the cached like counter by delta, never below zero, and returns the new value
	AdjustLikeCount(ctx context.Context, id string, delta int) (int, error)

	// ReconcileLikeCounts recomputes every cached counter from the likes relation
	ReconcileLikeCounts(ctx context.Context) (int64, error)
}
