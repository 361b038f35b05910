package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "disable", cfg.Postgres.SslMode)
	assert.Equal(t, int64(10<<20), cfg.Feed.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.True(t, cfg.Storage.UsePathStyle)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "feed")
	t.Setenv("POSTGRES_PASS", "secret")
	t.Setenv("POSTGRES_NAME", "artfeed")
	t.Setenv("STORAGE_BUCKET", "images")
	t.Setenv("RATE_LIMIT_PER", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "images", cfg.Storage.Bucket)
	assert.Equal(t, time.Minute, cfg.RateLimit.Per)
	assert.Equal(t, "dbname=artfeed user=feed password=secret host=db port=5432 sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "postgres://feed:secret@db:5432/artfeed?sslmode=disable", cfg.GetURL())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
