package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitFeed, downInitFeed)
}

func upInitFeed(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE EXTENSION IF NOT EXISTS pgcrypto;

	CREATE TABLE profiles (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         VARCHAR NOT NULL UNIQUE,
		username      VARCHAR NOT NULL UNIQUE,
		full_name     VARCHAR NOT NULL DEFAULT '',
		avatar_url    VARCHAR NOT NULL DEFAULT '',
		bio           TEXT NOT NULL DEFAULT '',
		website       VARCHAR NOT NULL DEFAULT '',
		password_hash VARCHAR NOT NULL,
		created_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	CREATE TABLE posts (
		id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		author_id           UUID NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
		author_name         VARCHAR NOT NULL,
		image_url           VARCHAR NOT NULL,
		original_image_url  VARCHAR NOT NULL,
		image_path          VARCHAR NOT NULL,
		original_image_path VARCHAR NOT NULL,
		caption             TEXT NOT NULL DEFAULT '',
		transformation      VARCHAR NOT NULL DEFAULT 'original',
		prompt              TEXT,
		created_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	CREATE INDEX posts_created_at_idx ON posts (created_at DESC);

	CREATE TABLE comments (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		post_id     UUID NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		author_id   UUID NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
		author_name VARCHAR NOT NULL,
		content     TEXT NOT NULL CHECK (length(btrim(content)) > 0),
		created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT clock_timestamp()
	);
	CREATE INDEX comments_post_id_idx ON comments (post_id, created_at);

	CREATE TABLE likes (
		post_id    UUID NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		actor_id   UUID NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		PRIMARY KEY (post_id, actor_id)
	);
	`)
	return err
}

func downInitFeed(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE likes;
	DROP TABLE comments;
	DROP TABLE posts;
	DROP TABLE profiles;
	`)
	return err
}
