package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
)

type fakeSessionRepo struct {
	mu   sync.Mutex
	rows map[string]domain.Session
	err  error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: map[string]domain.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = *s
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, s := range f.rows {
		if s.Expired(now) {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// newContext builds a gin context whose request carries the given cookies.
func newContext(cookies []*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		if ck.MaxAge >= 0 && ck.Value != "" {
			req.AddCookie(ck)
		}
	}
	c.Request = req
	return c, rec
}

func newManager(t *testing.T, repo repository.SessionRepository) *Manager {
	t.Helper()
	m, err := NewManager(repo, Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(newFakeSessionRepo(), Config{})
	require.Error(t, err)
}

func TestManager_AnonymousByDefault(t *testing.T) {
	m := newManager(t, newFakeSessionRepo())
	c, _ := newContext(nil)

	_, ok, err := m.UserID(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_StartResolveEnd(t *testing.T) {
	repo := newFakeSessionRepo()
	m := newManager(t, repo)

	c, rec := newContext(nil)
	require.NoError(t, m.Start(c, 42))
	cookies := rec.Result().Cookies()
	require.Equal(t, 1, repo.count())

	c, _ = newContext(cookies)
	id, ok, err := m.UserID(c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	c, rec = newContext(cookies)
	require.NoError(t, m.End(c))
	assert.Equal(t, 0, repo.count())

	// the old token no longer resolves even if the client kept it
	c, _ = newContext(cookies)
	_, ok, err = m.UserID(c)
	require.NoError(t, err)
	assert.False(t, ok)

	// logging out twice is harmless
	c, _ = newContext(rec.Result().Cookies())
	require.NoError(t, m.End(c))
}

func TestManager_StartRevokesPreviousSession(t *testing.T) {
	repo := newFakeSessionRepo()
	m := newManager(t, repo)

	c, rec := newContext(nil)
	require.NoError(t, m.Start(c, 1))

	c, _ = newContext(rec.Result().Cookies())
	require.NoError(t, m.Start(c, 2))
	assert.Equal(t, 1, repo.count())
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	repo := newFakeSessionRepo()
	issuer := newManager(t, repo)
	other, err := NewManager(repo, Config{Secret: "another-secret"})
	require.NoError(t, err)

	c, rec := newContext(nil)
	require.NoError(t, issuer.Start(c, 7))

	c, _ = newContext(rec.Result().Cookies())
	_, ok, err := other.UserID(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_ExpiredSession(t *testing.T) {
	repo := newFakeSessionRepo()
	m := newManager(t, repo)

	c, rec := newContext(nil)
	require.NoError(t, m.Start(c, 7))

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	c, _ = newContext(rec.Result().Cookies())
	_, ok, err := m.UserID(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_StorageFaultPropagates(t *testing.T) {
	repo := newFakeSessionRepo()
	m := newManager(t, repo)

	c, rec := newContext(nil)
	require.NoError(t, m.Start(c, 7))

	repo.err = errors.New("database is locked")
	c, _ = newContext(rec.Result().Cookies())
	_, _, err := m.UserID(c)
	require.Error(t, err)
}

func TestManager_FlashesAreOneShot(t *testing.T) {
	m := newManager(t, newFakeSessionRepo())

	c, rec := newContext(nil)
	m.AddFlash(c, FlashDanger, "first")
	m.AddFlash(c, FlashInfo, "second")

	setCookies := rec.Header().Values("Set-Cookie")
	require.Len(t, setCookies, 1)

	c, rec = newContext(rec.Result().Cookies())
	flashes := m.Flashes(c)
	assert.Equal(t, []Flash{
		{Category: FlashDanger, Message: "first"},
		{Category: FlashInfo, Message: "second"},
	}, flashes)

	c, _ = newContext(rec.Result().Cookies())
	assert.Empty(t, m.Flashes(c))
}

func TestManager_FlashesIncludePendingOnSameRequest(t *testing.T) {
	m := newManager(t, newFakeSessionRepo())

	c, _ := newContext(nil)
	m.AddFlash(c, FlashSuccess, "now")
	assert.Equal(t, []Flash{{Category: FlashSuccess, Message: "now"}}, m.Flashes(c))
	assert.Empty(t, m.Flashes(c))
}
