//go:build integration

package repositories_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/migrations"
	"github.com/orgball2608/artfeed-bot/internal/repositories/comment"
	"github.com/orgball2608/artfeed-bot/internal/repositories/like"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	"github.com/orgball2608/artfeed-bot/internal/repositories/profile"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type repos struct {
	profiles *profile.PgxRepository
	posts    *post.PgxRepository
	comments *comment.PgxRepository
	likes    *like.PgxRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("artfeed_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Up(ctx, db))
	require.NoError(t, db.Close())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := logger.NewNop()
	return repos{
		profiles: profile.NewPgxRepository(pool, log),
		posts:    post.NewPgxRepository(pool, log),
		comments: comment.NewPgxRepository(pool, log),
		likes:    like.NewPgxRepository(pool, log),
	}
}

func createProfile(t *testing.T, r repos, username string) *domain.Profile {
	t.Helper()
	p := &domain.Profile{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
	}
	require.NoError(t, r.profiles.Create(context.Background(), p))
	require.NotEmpty(t, p.ID)
	return p
}

func createPost(t *testing.T, r repos, author *domain.Profile, caption string) *domain.Post {
	t.Helper()
	p := &domain.Post{
		AuthorID:          author.ID,
		AuthorDisplayName: author.Username,
		ImageURL:          "https://cdn.test/t/" + caption,
		OriginalImageURL:  "https://cdn.test/o/" + caption,
		ImagePath:         author.ID + "/transformed/" + caption,
		OriginalImagePath: author.ID + "/original/" + caption,
		Caption:           caption,
		Transformation:    domain.TransformationGhibli,
		Prompt:            "soft light",
	}
	require.NoError(t, r.posts.Create(context.Background(), p))
	return p
}

func TestRepositories(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	ana := createProfile(t, r, "ana")
	bo := createProfile(t, r, "bo")

	t.Run("duplicate profile", func(t *testing.T) {
		err := r.profiles.Create(ctx, &domain.Profile{Email: "ana@example.com", Username: "ana2", PasswordHash: "x"})
		assert.ErrorIs(t, err, profile.ErrAlreadyExists)

		got, err := r.profiles.GetByUsername(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, ana.ID, got.ID)

		_, err = r.profiles.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("profile update", func(t *testing.T) {
		bio := "painter"
		got, err := r.profiles.Update(ctx, bo.ID, profile.Update{Bio: &bio})
		require.NoError(t, err)
		assert.Equal(t, "painter", got.Bio)
		assert.Equal(t, "bo", got.Username)
	})

	first := createPost(t, r, ana, "first")
	second := createPost(t, r, ana, "second")

	t.Run("list newest first", func(t *testing.T) {
		posts, err := r.posts.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[1].ID)
		assert.Equal(t, "soft light", posts[0].Prompt)
		assert.Equal(t, domain.PostVisible, posts[0].State)
	})

	t.Run("like relation is unique", func(t *testing.T) {
		require.NoError(t, r.likes.Create(ctx, first.ID, bo.ID))
		assert.ErrorIs(t, r.likes.Create(ctx, first.ID, bo.ID), like.ErrAlreadyExists)

		ok, err := r.likes.Exists(ctx, first.ID, bo.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		liked, err := r.likes.LikedPostIDs(ctx, bo.ID)
		require.NoError(t, err)
		assert.Contains(t, liked, first.ID)

		got, err := r.posts.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikeCount)
	})

	t.Run("cached like count never negative", func(t *testing.T) {
		n, err := r.posts.AdjustLikeCount(ctx, second.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("reconcile", func(t *testing.T) {
		_, err := r.posts.AdjustLikeCount(ctx, first.ID, 5)
		require.NoError(t, err)

		fixed, err := r.posts.ReconcileLikeCounts(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fixed, int64(1))

		n, err := r.posts.AdjustLikeCount(ctx, first.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("comments in creation order", func(t *testing.T) {
		for _, text := range []string{"one", "two"} {
			require.NoError(t, r.comments.Create(ctx, &domain.Comment{
				PostID: first.ID, AuthorID: bo.ID, AuthorDisplayName: "bo", Content: text,
			}))
		}

		byPost, err := r.comments.ListByPostIDs(ctx, []string{first.ID, second.ID})
		require.NoError(t, err)
		require.Len(t, byPost[first.ID], 2)
		assert.Equal(t, "one", byPost[first.ID][0].Content)
		assert.Equal(t, "two", byPost[first.ID][1].Content)
		assert.Empty(t, byPost[second.ID])
	})

	t.Run("delete is owner scoped and cascades", func(t *testing.T) {
		assert.ErrorIs(t, r.posts.Delete(ctx, first.ID, bo.ID), post.ErrNotFound)

		require.NoError(t, r.posts.Delete(ctx, first.ID, ana.ID))

		_, err := r.posts.GetByID(ctx, first.ID)
		assert.ErrorIs(t, err, post.ErrNotFound)

		ok, err := r.likes.Exists(ctx, first.ID, bo.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		err = r.comments.Create(ctx, &domain.Comment{PostID: first.ID, AuthorID: bo.ID, AuthorDisplayName: "bo", Content: "late"})
		assert.ErrorIs(t, err, comment.ErrPostNotFound)

		assert.ErrorIs(t, r.likes.Create(ctx, first.ID, bo.ID), like.ErrPostNotFound)
	})
}
