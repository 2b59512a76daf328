// Package storage abstracts where uploaded media bytes live: local disk for
// single-node deployments, S3-compatible object storage otherwise.
package storage

import (
	"context"
	"io"
)

// Store is the blob-storage surface the media service consumes.
type Store interface {
	// Put writes the object and returns a URL or path clients can use to
	// retrieve it later.
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
