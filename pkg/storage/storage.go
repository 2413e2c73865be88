package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("storage: object not found")

// ImageStorage holds publicly served images (company logos, profile photos).
type ImageStorage interface {
	// UploadImage stores the image under folder and returns its public URL.
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage removes the image behind a URL returned by UploadImage.
	DeleteImage(ctx context.Context, fileURL string) error
}

// FileStorage holds private documents addressed by relative path. They are
// only ever streamed back through authorized handlers.
type FileStorage interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) error
	// Open returns ErrObjectNotFound when nothing is stored at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is a no-op for missing objects.
	Delete(ctx context.Context, path string) error
}
