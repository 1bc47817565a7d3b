package storage

import (
	"context"
	"io"
)

// ObjectStorage accepts uploaded blobs and resolves their public URLs.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
