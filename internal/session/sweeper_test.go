package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/domain"
)

func TestSweeper_Sweep(t *testing.T) {
	repo := newFakeSessionRepo()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "old", UserID: 1, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "live", UserID: 1, ExpiresAt: now.Add(time.Minute)}))

	logger, _ := test.NewNullLogger()
	sweeper := NewSweeper(repo, time.Minute, logger)
	sweeper.now = func() time.Time { return now }

	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, repo.count())
}

func TestSweeper_StartSweepsImmediately(t *testing.T) {
	repo := newFakeSessionRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Session{
		ID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Hour),
	}))

	logger, _ := test.NewNullLogger()
	sweeper := NewSweeper(repo, time.Hour, logger)
	sweeper.Start(context.Background())
	defer sweeper.Shutdown()

	assert.Eventually(t, func() bool { return repo.count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSweeper_LogsFailures(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.err = errors.New("disk full")

	logger, hook := test.NewNullLogger()
	sweeper := NewSweeper(repo, time.Hour, logger)
	sweeper.Start(context.Background())
	defer sweeper.Shutdown()

	assert.Eventually(t, func() bool {
		for _, entry := range hook.AllEntries() {
			if entry.Message == "session sweep failed" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}
