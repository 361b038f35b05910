package s3impl

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Endpoint = endpoint
	cfg.Storage.Bucket = "artfeed"
	cfg.Storage.AccessKey = "test-key"
	cfg.Storage.SecretKey = "test-secret"
	cfg.Storage.UsePathStyle = true
	return cfg
}

func TestNew_Validation(t *testing.T) {
	t.Run("missing bucket", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.Storage.Bucket = ""
		_, err := New(cfg, logger.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.Storage.AccessKey = ""
		_, err := New(cfg, logger.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.Storage.SecretKey = ""
		_, err := New(cfg, logger.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config", func(t *testing.T) {
		s, err := New(testConfig("http://localhost:9000"), logger.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "artfeed", s.Bucket())
	})
}

func TestPublicURL(t *testing.T) {
	t.Run("endpoint and bucket when no base url", func(t *testing.T) {
		s, err := New(testConfig("localhost:9000"), logger.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/artfeed/u1/original/a.png", s.PublicURL("u1/original/a.png"))
	})

	t.Run("https when ssl enabled", func(t *testing.T) {
		cfg := testConfig("minio.local")
		cfg.Storage.UseSSL = true
		s, err := New(cfg, logger.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "https://minio.local/artfeed/u1/a.png", s.PublicURL("u1/a.png"))
	})

	t.Run("configured base url", func(t *testing.T) {
		cfg := testConfig("http://localhost:9000")
		cfg.Storage.PublicBaseURL = "https://cdn.example.com/images/"
		s, err := New(cfg, logger.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/images/u1/my%20pic.jpg", s.PublicURL("u1/my pic.jpg"))
	})
}

func TestUpload_EmptyPath(t *testing.T) {
	s, err := New(testConfig("http://localhost:9000"), logger.NewNop())
	require.NoError(t, err)

	err = s.Upload(context.Background(), "", []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestRemove_NothingToDelete(t *testing.T) {
	s, err := New(testConfig("http://localhost:9000"), logger.NewNop())
	require.NoError(t, err)

	assert.NoError(t, s.Remove(context.Background(), nil))
	assert.NoError(t, s.Remove(context.Background(), []string{"", ""}))
}

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

func fakeS3(t *testing.T, deleteResponse string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
		mu.Unlock()

		if r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, deleteResponse)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestUploadAndRemove_AgainstFakeServer(t *testing.T) {
	srv, requests := fakeS3(t, `<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></DeleteResult>`)

	s, err := New(testConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "u1/original/a.png", []byte("png-bytes"), "image/png"))
	require.NoError(t, s.Remove(ctx, []string{"u1/original/a.png", "u1/transformed/a.png"}))

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/artfeed/u1/original/a.png", reqs[0].path)

	assert.Equal(t, http.MethodPost, reqs[1].method)
	assert.Equal(t, "/artfeed", strings.TrimSuffix(reqs[1].path, "/"))
	assert.Contains(t, reqs[1].query, "delete")
	assert.Contains(t, reqs[1].body, "u1/original/a.png")
	assert.Contains(t, reqs[1].body, "u1/transformed/a.png")
}

func TestRemove_ReportsPerKeyErrors(t *testing.T) {
	srv, _ := fakeS3(t, `<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Error><Key>u1/original/a.png</Key><Code>AccessDenied</Code><Message>denied</Message></Error>
</DeleteResult>`)

	s, err := New(testConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	err = s.Remove(context.Background(), []string{"u1/original/a.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u1/original/a.png")
	assert.Contains(t, err.Error(), "denied")
}
