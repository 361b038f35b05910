package like

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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
		logger: logger.WithComponent("LikeRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Exists(ctx context.Context, postID, actorID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("likes").
		Where(sq.Eq{"post_id": postID, "actor_id": actorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *PgxRepository) Create(ctx context.Context, postID, actorID string) error {
	query, args, err := repositories.SqBuilder.
		Insert("likes").
		Columns("post_id", "actor_id").
		Values(postID, actorID).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		if repositories.IsForeignKeyViolation(err, "likes_post_id_fkey") {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (r *PgxRepository) Delete(ctx context.Context, postID, actorID string) error {
	query, args, err := repositories.SqBuilder.
		Delete("likes").
		Where(sq.Eq{"post_id": postID, "actor_id": actorID}).
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

func (r *PgxRepository) LikedPostIDs(ctx context.Context, actorID string) (map[string]struct{}, error) {
	query, args, err := repositories.SqBuilder.
		Select("post_id::text").
		From("likes").
		Where(sq.Eq{"actor_id": actorID}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	liked := make(map[string]struct{})
	for rows.Next() {
		var postID string
		if err := rows.Scan(&postID); err != nil {
			return nil, err
		}
		liked[postID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return liked, nil
}
