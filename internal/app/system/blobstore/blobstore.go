// internal/app/system/blobstore/blobstore.go
//
// Package blobstore stores screenshot binaries in S3-compatible object
// storage, with a local-disk variant for development. Metadata stays in
// MongoDB; blobs are addressed by filename.
package blobstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotConfigured is returned by the nil-safe helpers when no backing
// store was configured.
var ErrNotConfigured = errors.New("blob storage is not configured")

// DefaultSignedURLTTL is how long issued download links stay valid.
const DefaultSignedURLTTL = 15 * time.Minute

// Store is the object storage surface the rest of the app depends on.
type Store interface {
	// Upload writes one blob under the given key.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// SignedURL returns a time-limited download URL for the key.
	SignedURL(ctx context.Context, key string) (string, error)

	// Delete removes the blob. Deleting a missing blob is not an error,
	// so a retried two-phase delete converges.
	Delete(ctx context.Context, key string) error
}

// NormalizeKey reduces a stored filename or legacy path to the object key.
// Early agent builds recorded full client paths, Unix or Windows style;
// the key is the final path segment.
func NormalizeKey(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
