package like

import (
	"context"
	"errors"
)

var (
	ErrAlreadyExists = errors.New("like already exists")
	ErrNotFound      = errors.New("like not found")
	ErrPostNotFound  = errors.New("liked post not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=like.go -destination=mocks/mock.go
type Repository interface {
	// Exists reports whether actorID likes postID
	Exists(ctx context.Context, postID, actorID string) (bool, error)

	// Create records the like, returning ErrAlreadyExists for a duplicate pair
	// and ErrPostNotFound when the post is gone
	Create(ctx context.Context, postID, actorID string) error

	// Delete removes the like, returning ErrNotFound when there was none
	Delete(ctx context.Context, postID, actorID string) error

	// LikedPostIDs returns the set of posts actorID currently likes
	LikedPostIDs(ctx context.Context, actorID string) (map[string]struct{}, error)
}
