package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/repository/sqlite"
	"blogdesk/internal/storage"
)

type fixture struct {
	users     UserService
	articles  ArticleService
	uploadDir string
	logs      *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	db, err := sqlite.Open(filepath.Join(root, "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db, nil))

	uploadDir := filepath.Join(root, "static", "uploads")
	store, err := storage.NewLocalService(uploadDir, "uploads", "/static")
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()

	userRepo := sqlite.NewUserRepository(db)
	articleRepo := sqlite.NewArticleRepository(db)
	imageRepo := sqlite.NewImageRepository(db)

	return &fixture{
		users:     NewUserService(userRepo, imageRepo, store, logger),
		articles:  NewArticleService(articleRepo, imageRepo, store, logger),
		uploadDir: uploadDir,
		logs:      hook,
	}
}
