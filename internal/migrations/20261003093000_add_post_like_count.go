package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddPostLikeCount, downAddPostLikeCount)
}

func upAddPostLikeCount(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	ALTER TABLE posts ADD COLUMN like_count INTEGER NOT NULL DEFAULT 0 CHECK (like_count >= 0);
	UPDATE posts p SET like_count = (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id);
	CREATE INDEX likes_actor_id_idx ON likes (actor_id);
	`)
	return err
}

func downAddPostLikeCount(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP INDEX likes_actor_id_idx;
	ALTER TABLE posts DROP COLUMN like_count;
	`)
	return err
}
