// internal/app/system/blobstore/local.go
package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs on the local filesystem and serves them through
// the given URL prefix. Meant for development without an object store.
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocal creates the storage directory if needed.
func NewLocal(dir, urlPrefix string) (*LocalStore, error) {
	if dir == "" {
		return nil, ErrNotConfigured
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *LocalStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	key = NormalizeKey(key)
	if key == "" {
		return fmt.Errorf("empty storage key")
	}
	return os.WriteFile(filepath.Join(s.dir, key), data, 0o644)
}

func (s *LocalStore) SignedURL(_ context.Context, key string) (string, error) {
	return s.urlPrefix + "/" + NormalizeKey(key), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, NormalizeKey(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
