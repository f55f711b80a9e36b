package storage

import (
	"context"
	"io"
)

// ObjectStorage abstracts the object store holding product images. The
// concrete backend (MinIO or GCS) is chosen by configuration.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}
