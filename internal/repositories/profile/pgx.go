package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
		logger: logger.WithComponent("ProfileRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

var profileColumns = []string{
	"id::text", "email", "username", "full_name", "avatar_url", "bio", "website", "password_hash", "created_at",
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.FullName, &p.AvatarURL, &p.Bio, &p.Website, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgxRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query, args, err := repositories.SqBuilder.
		Insert("profiles").
		Columns("email", "username", "full_name", "password_hash").
		Values(profile.Email, profile.Username, profile.FullName, profile.PasswordHash).
		Suffix("RETURNING id::text, created_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, repositories.ConstraintName(err))
		}
		return err
	}
	return nil
}

func (r *PgxRepository) getBy(ctx context.Context, column, value string) (*domain.Profile, error) {
	query, args, err := repositories.SqBuilder.
		Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgxRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PgxRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PgxRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PgxRepository) Update(ctx context.Context, id string, update Update) (*domain.Profile, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	builder := repositories.SqBuilder.Update("profiles").Where(sq.Eq{"id": id})
	if update.FullName != nil {
		builder = builder.Set("full_name", *update.FullName)
	}
	if update.AvatarURL != nil {
		builder = builder.Set("avatar_url", *update.AvatarURL)
	}
	if update.Bio != nil {
		builder = builder.Set("bio", *update.Bio)
	}
	if update.Website != nil {
		builder = builder.Set("website", *update.Website)
	}

	query, args, err := builder.Suffix("RETURNING " + strings.Join(profileColumns, ", ")).ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}
