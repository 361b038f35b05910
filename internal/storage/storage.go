package storage

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock.go
type Blob interface {
	// Upload stores data under path, replacing anything already there
	Upload(ctx context.Context, path string, data []byte, contentType string) error

	// PublicURL resolves path to a URL clients can fetch without credentials
	PublicURL(path string) string

	// Remove deletes every path; missing objects are not an error
	Remove(ctx context.Context, paths []string) error
}
