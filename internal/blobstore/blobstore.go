// Package blobstore abstracts where processed menu images live.
package blobstore

import (
	"context"
	"io"
)

type BlobStore interface {
	// Save stores the blob under a generated key with the given prefix and
	// returns that key.
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
	// PublicURL returns the browser-reachable URL for a stored blob.
	PublicURL(storageKey string) string
}
