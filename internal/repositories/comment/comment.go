package comment

import (
	"context"
	"errors"

	"github.com/orgball2608/artfeed-bot/internal/domain"
)

var ErrPostNotFound = errors.New("comment target post not found")

//go:generate go run go.uber.org/mock/mockgen -source=comment.go -destination=mocks/mock.go
type Repository interface {
	// Create inserts the comment and fills in the server-assigned ID and CreatedAt
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByPostIDs returns comments grouped by post, each group in creation order
	ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]domain.Comment, error)
}
