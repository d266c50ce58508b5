package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ImageStore persists uploaded images and returns the URL they are served from.
type ImageStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// LocalImageStore writes under Root/<folder>/<filename> and serves from
// PublicPrefix/<folder>/<filename>.
type LocalImageStore struct {
	Root         string
	PublicPrefix string
}

func NewLocalImageStore(root, publicPrefix string) *LocalImageStore {
	return &LocalImageStore{Root: root, PublicPrefix: strings.TrimRight(publicPrefix, "/")}
}

func (s *LocalImageStore) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := checkPathSegment(folder); err != nil {
		return "", err
	}
	if err := checkPathSegment(filename); err != nil {
		return "", err
	}

	dir := filepath.Join(s.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}

	target := filepath.Join(dir, filename)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("close upload: %w", err)
	}

	return path.Join(s.PublicPrefix, folder, filename), nil
}

// Delete removes a file previously returned by Save. URLs outside
// PublicPrefix are ignored.
func (s *LocalImageStore) Delete(ctx context.Context, imageURL string) error {
	rel, ok := strings.CutPrefix(imageURL, s.PublicPrefix+"/")
	if !ok {
		return nil
	}
	folder, filename, ok := strings.Cut(rel, "/")
	if !ok || checkPathSegment(folder) != nil || checkPathSegment(filename) != nil {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, folder, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func checkPathSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
		return fmt.Errorf("invalid path segment %q", seg)
	}
	return nil
}
