package feedimpl

import (
	"context"
	"strings"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

func (s *Store) List(ctx context.Context) ([]domain.Post, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.snapshot(nil), nil
}

func (s *Store) Explore(ctx context.Context, filter feed.ExploreFilter) ([]domain.Post, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return s.snapshot(func(p *domain.Post) bool {
		if filter.Transformation != "" && p.Transformation != filter.Transformation {
			return false
		}
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Caption), search) ||
			strings.Contains(strings.ToLower(p.AuthorDisplayName), search) ||
			strings.Contains(strings.ToLower(p.Prompt), search)
	}), nil
}

func (s *Store) ByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.snapshot(func(p *domain.Post) bool {
		return p.AuthorID == authorID
	}), nil
}

func (s *Store) Refresh(ctx context.Context) error {
	return s.reload(ctx)
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	need := !s.loaded || s.stale
	s.mu.Unlock()

	if !need {
		return nil
	}
	return s.reload(ctx)
}

// reload replaces the in-memory view with what persistence holds now.
func (s *Store) reload(ctx context.Context) error {
	s.mu.Lock()
	gen := s.authGen
	s.mu.Unlock()

	actor, authenticated := s.identity.CurrentActor()

	posts, err := s.posts.List(ctx)
	if err != nil {
		return apperrors.Dependency(err, "failed to load posts")
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	comments, err := s.comments.ListByPostIDs(ctx, ids)
	if err != nil {
		return apperrors.Dependency(err, "failed to load comments")
	}

	var liked map[string]struct{}
	if authenticated {
		liked, err = s.likes.LikedPostIDs(ctx, actor.ID)
		if err != nil {
			return apperrors.Dependency(err, "failed to load likes")
		}
	}

	for _, p := range posts {
		p.Comments = comments[p.ID]
		if p.Comments == nil {
			p.Comments = []domain.Comment{}
		}
		_, p.LikedByMe = liked[p.ID]
		p.State = domain.PostVisible
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = posts
	s.loaded = true
	if gen == s.authGen {
		s.stale = false
		s.viewerID = actor.ID
	}

	s.logger.Debug("Feed reloaded", "posts", len(posts), "viewer", actor.ID)
	return nil
}
