package s3impl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/orgball2608/artfeed-bot/internal/storage"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
)

// DeleteObjects accepts at most this many keys per request.
const maxDeleteBatch = 1000

var ErrEmptyPath = errors.New("storage path is required")

var _ storage.Blob = (*Storage)(nil)

// Storage is a storage.Blob over any S3-compatible service (AWS S3, MinIO, RustFS).
type Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  logger.Logger
}

func New(cfg *config.Config, log logger.Logger) (*Storage, error) {
	sc := cfg.Storage
	if sc.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if sc.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if sc.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := sc.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if sc.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := sc.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = sc.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	baseURL := strings.TrimRight(sc.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(endpoint, "/") + "/" + sc.Bucket
	}

	return &Storage{
		client:  client,
		bucket:  sc.Bucket,
		baseURL: baseURL,
		logger:  log.WithComponent("S3Storage"),
	}, nil
}

func (s *Storage) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", "bucket", s.bucket)
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (s *Storage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if path == "" {
		return ErrEmptyPath
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", path, err)
	}

	s.logger.Debug("Uploaded object", "path", path, "size", len(data))
	return nil
}

func (s *Storage) PublicURL(path string) string {
	escaped := make([]string, 0, strings.Count(path, "/")+1)
	for _, seg := range strings.Split(path, "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return s.baseURL + "/" + strings.Join(escaped, "/")
}

func (s *Storage) Remove(ctx context.Context, paths []string) error {
	keys := make([]types.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		keys = append(keys, types.ObjectIdentifier{Key: aws.String(p)})
	}

	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: keys[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("failed to delete %d object(s), first %s: %s",
				len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}
