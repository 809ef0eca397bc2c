package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, NewUserRepository(db), "alice")
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, &domain.Session{
		ID: "abc", UserID: alice.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)
	assert.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))

	require.NoError(t, repo.Delete(ctx, "abc"))
	require.NoError(t, repo.Delete(ctx, "abc"))

	_, err = repo.Get(ctx, "abc")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, NewUserRepository(db), "alice")
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	for id, expires := range map[string]time.Time{
		"old":   now.Add(-time.Hour),
		"edge":  now,
		"fresh": now.Add(time.Hour),
	} {
		require.NoError(t, repo.Create(ctx, &domain.Session{
			ID: id, UserID: alice.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: expires,
		}))
	}

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.Get(ctx, "fresh")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "old")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
