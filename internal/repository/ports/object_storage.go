package ports

import (
	"context"
	"io"
)

// ObjectStorage is the blob store behind image attachments. Keys are
// storage-relative paths under one public-servable bucket; the temp holding
// area is just the temp_images/ prefix.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}
