package post

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/repositories"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

var postColumns = []string{
	"p.id::text",
	"p.author_id::text",
	"p.author_name",
	"p.image_url",
	"p.original_image_url",
	"p.image_path",
	"p.original_image_path",
	"p.caption",
	"p.transformation",
	"COALESCE(p.prompt, '')",
	"(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)",
	"p.created_at",
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	var transformation string
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorDisplayName,
		&p.ImageURL,
		&p.OriginalImageURL,
		&p.ImagePath,
		&p.OriginalImagePath,
		&p.Caption,
		&transformation,
		&p.Prompt,
		&p.LikeCount,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Transformation = domain.Transformation(transformation)
	p.State = domain.PostVisible
	return &p, nil
}

func (r *PgxRepository) Create(ctx context.Context, post *domain.Post) error {
	var prompt *string
	if post.Prompt != "" {
		prompt = &post.Prompt
	}

	query, args, err := repositories.SqBuilder.
		Insert("posts").
		Columns(
			"author_id", "author_name", "image_url", "original_image_url",
			"image_path", "original_image_path", "caption", "transformation", "prompt",
		).
		Values(
			post.AuthorID, post.AuthorDisplayName, post.ImageURL, post.OriginalImageURL,
			post.ImagePath, post.OriginalImagePath, post.Caption, string(post.Transformation), prompt,
		).
		Suffix("RETURNING id::text, created_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&post.ID, &post.CreatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PgxRepository) List(ctx context.Context) ([]*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns...).
		From("posts p").
		OrderBy("p.created_at DESC", "p.id").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PgxRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns...).
		From("posts p").
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	p, err := scanPost(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PgxRepository) Delete(ctx context.Context, id string, authorID string) error {
	query, args, err := repositories.SqBuilder.
		Delete("posts").
		Where(sq.Eq{"id": id, "author_id": authorID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PgxRepository) AdjustLikeCount(ctx context.Context, id string, delta int) (int, error) {
	query, args, err := repositories.SqBuilder.
		Update("posts").
		Set("like_count", sq.Expr("GREATEST(like_count + ?, 0)", delta)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING like_count").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

func (r *PgxRepository) ReconcileLikeCounts(ctx context.Context) (int64, error) {
	query := `
		UPDATE posts p
		SET like_count = c.n
		FROM (
			SELECT p2.id, COUNT(l.actor_id) AS n
			FROM posts p2
			LEFT JOIN likes l ON l.post_id = p2.id
			GROUP BY p2.id
		) c
		WHERE p.id = c.id AND p.like_count <> c.n
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}

	fixed := result.RowsAffected()
	if fixed > 0 {
		r.logger.Warn("Like counters drifted from the likes relation", "fixed", fixed)
	}
	return fixed, nil
}
