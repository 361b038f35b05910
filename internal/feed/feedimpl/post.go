package feedimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
)

var acceptedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"image/heif",
	"image/bmp",
}

func (s *Store) CreatePost(ctx context.Context, in feed.CreatePostInput) (domain.Post, error) {
	actor, ok := s.identity.CurrentActor()
	if !ok {
		return domain.Post{}, apperrors.Unauthorized("sign in to share a post")
	}

	if len(in.Image) == 0 {
		return domain.Post{}, apperrors.InvalidInput("image is required")
	}
	if int64(len(in.Image)) > s.maxUploadBytes {
		return domain.Post{}, apperrors.InvalidInput(fmt.Sprintf("image is larger than %d bytes", s.maxUploadBytes))
	}
	kind, err := domain.ParseTransformation(string(in.Transformation))
	if err != nil {
		return domain.Post{}, apperrors.InvalidInput(err.Error())
	}
	mtype := mimetype.Detect(in.Image)
	if !mimetype.EqualsAny(mtype.String(), acceptedImageTypes...) {
		return domain.Post{}, apperrors.InvalidInput(fmt.Sprintf("unsupported file type %s", mtype.String()))
	}

	prompt := ""
	if kind.AcceptsPrompt() {
		prompt = strings.TrimSpace(in.Prompt)
	}

	p := &domain.Post{
		AuthorID:          actor.ID,
		AuthorDisplayName: actor.DisplayName,
		Caption:           in.Caption,
		Transformation:    kind,
		Prompt:            prompt,
		OriginalImagePath: fmt.Sprintf("%s/original/%s%s", actor.ID, s.newID(), mtype.Extension()),
		ImagePath:         fmt.Sprintf("%s/transformed/%s%s", actor.ID, s.newID(), mtype.Extension()),
		State:             domain.PostUploading,
	}

	if err := s.blob.Upload(ctx, p.OriginalImagePath, in.Image, mtype.String()); err != nil {
		return domain.Post{}, apperrors.Dependency(err, "failed to upload image")
	}

	// No transformation is applied yet; the styled copy is a second blob of the same bytes.
	if err := s.blob.Upload(ctx, p.ImagePath, in.Image, mtype.String()); err != nil {
		s.compensate(ctx, "transformed upload failed", p.OriginalImagePath)
		return domain.Post{}, apperrors.Dependency(err, "failed to upload transformed image")
	}

	p.OriginalImageURL = s.blob.PublicURL(p.OriginalImagePath)
	p.ImageURL = s.blob.PublicURL(p.ImagePath)

	if err := s.posts.Create(ctx, p); err != nil {
		s.compensate(ctx, "post insert failed", p.OriginalImagePath, p.ImagePath)
		return domain.Post{}, apperrors.Dependency(err, "failed to save post")
	}

	if err := p.Transition(domain.PostVisible); err != nil {
		return domain.Post{}, err
	}
	p.LikeCount = 0
	p.Comments = []domain.Comment{}

	s.mu.Lock()
	// A reload that ran after the insert already holds the post.
	if _, loaded := s.find(p.ID); loaded == nil {
		s.items = append([]*domain.Post{p}, s.items...)
	}
	out := p.Clone()
	s.mu.Unlock()

	s.logger.Info("Post created", "post_id", p.ID, "author_id", actor.ID, "transformation", string(kind))
	return out, nil
}

// compensate removes blobs left behind by a failed create. Failures are logged only.
func (s *Store) compensate(ctx context.Context, reason string, paths ...string) {
	if err := s.blob.Remove(context.WithoutCancel(ctx), paths); err != nil {
		s.logger.Warn("Failed to remove orphaned blobs", "reason", reason, "paths", paths, "error", err)
		return
	}
	s.logger.Debug("Removed orphaned blobs", "reason", reason, "paths", paths)
}

func (s *Store) DeletePost(ctx context.Context, postID, actorID string) error {
	actor, ok := s.identity.CurrentActor()
	if !ok {
		return apperrors.Unauthorized("sign in to delete posts")
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	var (
		authorID string
		paths    []string
	)
	s.mu.Lock()
	_, p := s.find(postID)
	if p != nil {
		if p.State != domain.PostVisible {
			s.mu.Unlock()
			return apperrors.NotFound("post not found")
		}
		authorID = p.AuthorID
		paths = []string{p.ImagePath, p.OriginalImagePath}
	}
	s.mu.Unlock()

	// Posts shared from another session since the last reload are not in the view yet.
	if p == nil {
		stored, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			if errors.Is(err, post.ErrNotFound) {
				return apperrors.NotFound("post not found")
			}
			return apperrors.Dependency(err, "failed to load post")
		}
		authorID = stored.AuthorID
		paths = []string{stored.ImagePath, stored.OriginalImagePath}
	}

	if actorID != authorID || actorID != actor.ID {
		return apperrors.Forbidden("only the author can delete this post")
	}

	if err := s.posts.Delete(ctx, postID, actorID); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			s.drop(postID)
			return apperrors.NotFound("post not found")
		}
		return apperrors.Dependency(err, "failed to delete post")
	}

	s.mu.Lock()
	if _, p := s.find(postID); p != nil {
		_ = p.Transition(domain.PostDeleted)
	}
	s.mu.Unlock()

	if err := s.blob.Remove(context.WithoutCancel(ctx), paths); err != nil {
		s.logger.Warn("Post deleted but its images were not removed", "post_id", postID, "paths", paths, "error", err)
	}

	s.drop(postID)
	s.logger.Info("Post deleted", "post_id", postID, "author_id", actorID)
	return nil
}

func (s *Store) drop(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, _ := s.find(postID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}
