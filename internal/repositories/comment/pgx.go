package comment

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
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
		logger: logger.WithComponent("CommentRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query, args, err := repositories.SqBuilder.
		Insert("comments").
		Columns("post_id", "author_id", "author_name", "content").
		Values(comment.PostID, comment.AuthorID, comment.AuthorDisplayName, comment.Content).
		Suffix("RETURNING id::text, created_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if repositories.IsForeignKeyViolation(err, "comments_post_id_fkey") {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *PgxRepository) ListByPostIDs(ctx context.Context, postIDs []string) (map[string][]domain.Comment, error) {
	result := make(map[string][]domain.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query, args, err := repositories.SqBuilder.
		Select("id::text", "post_id::text", "author_id::text", "author_name", "content", "created_at").
		From("comments").
		Where(sq.Eq{"post_id": postIDs}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorDisplayName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		result[c.PostID] = append(result[c.PostID], c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
