package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type gcsStorage struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCSStorage stores private documents in a bucket. Objects are never made
// public. Without a credentials file the default application credentials are used.
func NewGCSStorage(ctx context.Context, bucket, prefix, credentialsFile string) (FileStorage, func() error, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize gcs client: %w", err)
	}
	return &gcsStorage{client: c, bucket: bucket, prefix: prefix}, c.Close, nil
}

func (s *gcsStorage) object(p string) *gcs.ObjectHandle {
	if s.prefix != "" {
		p = s.prefix + "/" + p
	}
	return s.client.Bucket(s.bucket).Object(p)
}

func (s *gcsStorage) Upload(ctx context.Context, p, contentType string, r io.Reader) error {
	w := s.object(p).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", p, err)
	}
	return nil
}

func (s *gcsStorage) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	rc, err := s.object(p).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	return rc, nil
}

func (s *gcsStorage) Delete(ctx context.Context, p string) error {
	err := s.object(p).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return nil
}
