// Package storage keeps uploaded bootcamp photos.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PhotoStore persists an uploaded file under key.
type PhotoStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

var ErrBadKey = errors.New("storage: bad key")

// DiskStore writes files below a local directory. Used when no bucket is configured.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return ErrBadKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
