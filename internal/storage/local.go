package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService writes uploads into a directory on disk that is served under /static.
type LocalService struct {
	dir          string
	publicPrefix string
	urlPrefix    string
}

func NewLocalService(dir, publicPrefix, urlPrefix string) (*LocalService, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalService{
		dir:          filepath.Clean(dir),
		publicPrefix: publicPrefix,
		urlPrefix:    strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *LocalService) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", name, err)
	}
	_, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload %s: %w", name, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close upload %s: %w", name, closeErr)
	}

	return joinPublic(s.publicPrefix, name), nil
}

// Remove deletes the stored file. A file that is already gone is not an error.
func (s *LocalService) Remove(ctx context.Context, storedPath string) error {
	name := objectName(storedPath)
	if name == "" || name == "." || name == "/" {
		return fmt.Errorf("invalid stored path %q", storedPath)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload %s: %w", name, err)
	}
	return nil
}

func (s *LocalService) URL(ctx context.Context, storedPath string) (string, error) {
	return s.urlPrefix + "/" + strings.TrimPrefix(storedPath, "/"), nil
}

var _ Service = (*LocalService)(nil)
