package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps blobs on disk. Public images live under <root>/public
// and are served at PublicURLPrefix; private files live under <root>/private.
type LocalStorage struct {
	root            string
	PublicURLPrefix string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	for _, dir := range []string{"public", "private"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to prepare storage root: %w", err)
		}
	}
	return &LocalStorage{root: root, PublicURLPrefix: "/storage"}, nil
}

// PublicDir is the directory to mount at PublicURLPrefix.
func (s *LocalStorage) PublicDir() string {
	return filepath.Join(s.root, "public")
}

// resolve maps a slash-separated relative path into dir, refusing anything
// that would escape it.
func (s *LocalStorage) resolve(dir, rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage path %q", rel)
	}
	return filepath.Join(s.root, dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *LocalStorage) write(full string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return err
	}
	return f.Close()
}

func (s *LocalStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	rel := path.Join(folder, uuid.NewString()+"-"+path.Base(filepath.ToSlash(fileName)))
	full, err := s.resolve("public", rel)
	if err != nil {
		return "", err
	}
	if err := s.write(full, r); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return s.PublicURLPrefix + "/" + rel, nil
}

func (s *LocalStorage) DeleteImage(_ context.Context, fileURL string) error {
	rel, ok := strings.CutPrefix(fileURL, s.PublicURLPrefix+"/")
	if !ok {
		return fmt.Errorf("not a local storage url: %s", fileURL)
	}
	full, err := s.resolve("public", rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *LocalStorage) Upload(_ context.Context, p, _ string, r io.Reader) error {
	full, err := s.resolve("private", p)
	if err != nil {
		return err
	}
	if err := s.write(full, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

func (s *LocalStorage) Open(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := s.resolve("private", p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(_ context.Context, p string) error {
	full, err := s.resolve("private", p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return nil
}
