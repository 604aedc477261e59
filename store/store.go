// Package store is where tag artifacts end up: a directory on disk or an S3
// bucket. Paths are forward-slash separated and relative to the store root.
package store

import (
	"context"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
type FileStore interface {
	// Read opens the named file. A missing file yields an error wrapping
	// os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write truncates or creates the named file. Close flushes it.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadAll reads a whole artifact.
func ReadAll(ctx context.Context, s FileStore, path string) ([]byte, error) {
	r, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
