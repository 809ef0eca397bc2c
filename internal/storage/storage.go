package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// Service persists uploaded image bytes and resolves them back to URLs.
// Paths handed out by Save are server-relative, e.g. "uploads/<token>_<name>".
type Service interface {
	Save(ctx context.Context, name string, body io.Reader) (string, error)
	Remove(ctx context.Context, storedPath string) error
	URL(ctx context.Context, storedPath string) (string, error)
}

func joinPublic(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// objectName strips the public prefix from a stored path and returns the bare file name.
func objectName(storedPath string) string {
	return path.Base(strings.TrimSpace(storedPath))
}
