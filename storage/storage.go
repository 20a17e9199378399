package storage

import (
	"context"
	"io"
)

// Handle identifies a stored file.
type Handle struct {
	URL      string
	PublicID string
	Size     int64
}

// Storage is the object-store abstraction the core depends on. Uploaded
// files (logos, portfolio images, attachments) go through it.
type Storage interface {
	Store(ctx context.Context, r io.Reader, folder, filename string, size int64) (Handle, error)
	Delete(ctx context.Context, publicID string) error
}
