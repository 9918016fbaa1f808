// Package storage abstracts blob persistence for attachments. Backends
// implement BlobStore; the default is the local filesystem, and an
// S3-compatible backend can plug in behind the same interface.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the key does not exist in the backend.
var ErrNotFound = errors.New("blob not found")

// BlobStore is the storage backend contract. Keys are opaque,
// collision-resistant paths like "attachments/<generated-name>".
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
