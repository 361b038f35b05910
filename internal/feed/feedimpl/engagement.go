package feedimpl

import (
	"context"
	"errors"
	"strings"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/repositories/comment"
	"github.com/orgball2608/artfeed-bot/internal/repositories/like"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

// ToggleLike likes the post, or removes the like if actorID already likes it.
// Calls for the same post are serialized within the store.
func (s *Store) ToggleLike(ctx context.Context, postID, actorID string) (domain.Post, error) {
	actor, ok := s.identity.CurrentActor()
	if !ok {
		return domain.Post{}, apperrors.Unauthorized("sign in to like posts")
	}
	if actorID != actor.ID {
		return domain.Post{}, apperrors.Forbidden("cannot like on behalf of another user")
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Post{}, err
	}
	if !s.visible(postID) {
		return domain.Post{}, apperrors.NotFound("post not found")
	}

	unlock := s.likeLocks.Lock(postID)
	defer unlock()

	exists, err := s.likes.Exists(ctx, postID, actorID)
	if err != nil {
		return domain.Post{}, apperrors.Dependency(err, "failed to check like")
	}

	// delta stays 0 when another session of the same actor got there first.
	var delta int
	liked := !exists
	if exists {
		err = s.likes.Delete(ctx, postID, actorID)
		switch {
		case err == nil:
			delta = -1
		case errors.Is(err, like.ErrNotFound):
			// The like also disappears when the post is deleted elsewhere.
			if _, err := s.posts.GetByID(ctx, postID); errors.Is(err, post.ErrNotFound) {
				s.drop(postID)
				return domain.Post{}, apperrors.NotFound("post not found")
			}
		default:
			return domain.Post{}, apperrors.Dependency(err, "failed to remove like")
		}
	} else {
		err = s.likes.Create(ctx, postID, actorID)
		switch {
		case err == nil:
			delta = 1
		case errors.Is(err, like.ErrPostNotFound):
			s.drop(postID)
			return domain.Post{}, apperrors.NotFound("post not found")
		case !errors.Is(err, like.ErrAlreadyExists):
			return domain.Post{}, apperrors.Dependency(err, "failed to add like")
		}
	}

	if delta != 0 {
		if _, err := s.posts.AdjustLikeCount(ctx, postID, delta); err != nil {
			s.logger.Warn("Failed to adjust cached like count", "post_id", postID, "delta", delta, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, p := s.find(postID)
	if p == nil {
		return domain.Post{}, apperrors.NotFound("post not found")
	}
	p.LikedByMe = liked
	p.LikeCount = max(p.LikeCount+delta, 0)
	return p.Clone(), nil
}

func (s *Store) AddComment(ctx context.Context, postID, content string) (domain.Comment, error) {
	actor, ok := s.identity.CurrentActor()
	if !ok {
		return domain.Comment{}, apperrors.Unauthorized("sign in to comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, apperrors.InvalidInput("comment cannot be empty")
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Comment{}, err
	}
	if !s.visible(postID) {
		return domain.Comment{}, apperrors.NotFound("post not found")
	}

	c := &domain.Comment{
		PostID:            postID,
		AuthorID:          actor.ID,
		AuthorDisplayName: actor.DisplayName,
		Content:           content,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		if errors.Is(err, comment.ErrPostNotFound) {
			s.drop(postID)
			return domain.Comment{}, apperrors.NotFound("post not found")
		}
		return domain.Comment{}, apperrors.Dependency(err, "failed to add comment")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, p := s.find(postID)
	if p == nil {
		return domain.Comment{}, apperrors.NotFound("post not found")
	}

	// Overlapping submissions can complete out of order; keep creation order.
	i := len(p.Comments)
	for i > 0 && p.Comments[i-1].CreatedAt.After(c.CreatedAt) {
		i--
	}
	p.Comments = append(p.Comments, domain.Comment{})
	copy(p.Comments[i+1:], p.Comments[i:])
	p.Comments[i] = *c

	return *c, nil
}

func (s *Store) visible(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p := s.find(postID)
	return p != nil && p.State == domain.PostVisible
}
