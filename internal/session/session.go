// Package session keeps track of who is signed in. Each login creates a row in
// the session store; the client holds an HS256 signed token naming that row.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
)

const (
	defaultCookieName = "blog_session"
	defaultTTL        = 7 * 24 * time.Hour
)

// Config controls token signing and cookie attributes.
type Config struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager issues, resolves and revokes login sessions and carries flash messages.
type Manager struct {
	sessions    repository.SessionRepository
	secret      []byte
	ttl         time.Duration
	cookieName  string
	flashCookie string
	secure      bool
	now         func() time.Time
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewManager(sessions repository.SessionRepository, cfg Config) (*Manager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	return &Manager{
		sessions:    sessions,
		secret:      []byte(cfg.Secret),
		ttl:         cfg.TTL,
		cookieName:  cfg.CookieName,
		flashCookie: cfg.CookieName + "_flash",
		secure:      cfg.Secure,
		now:         time.Now,
	}, nil
}

// Start binds a fresh session to userID. Any session the client already held is revoked.
func (m *Manager) Start(c *gin.Context, userID int64) error {
	if err := m.revoke(c); err != nil {
		return err
	}

	now := m.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Create(c.Request.Context(), sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	m.setCookie(c, m.cookieName, token, int(m.ttl.Seconds()))
	return nil
}

// End revokes the current session and clears the cookie. Calling it without a
// session is a no-op.
func (m *Manager) End(c *gin.Context) error {
	if err := m.revoke(c); err != nil {
		return err
	}
	m.setCookie(c, m.cookieName, "", -1)
	return nil
}

// UserID resolves the request's session to a user id. ok is false for anonymous
// requests, including forged, expired or revoked tokens.
func (m *Manager) UserID(c *gin.Context) (int64, bool, error) {
	raw, err := c.Cookie(m.cookieName)
	if err != nil || raw == "" {
		return 0, false, nil
	}

	claims, err := m.parse(raw, true)
	if err != nil {
		return 0, false, nil
	}

	sess, err := m.sessions.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if sess.Expired(m.now()) || strconv.FormatInt(sess.UserID, 10) != claims.Subject {
		return 0, false, nil
	}
	return sess.UserID, true, nil
}

func (m *Manager) revoke(c *gin.Context) error {
	raw, err := c.Cookie(m.cookieName)
	if err != nil || raw == "" {
		return nil
	}
	claims, err := m.parse(raw, false)
	if err != nil || claims.SessionID == "" {
		return nil
	}
	if err := m.sessions.Delete(c.Request.Context(), claims.SessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (m *Manager) parse(raw string, validate bool) (*sessionClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithTimeFunc(m.now))
	}

	var claims sessionClaims
	if _, err := jwt.ParseWithClaims(raw, &claims, m.keyFunc, opts...); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (m *Manager) keyFunc(*jwt.Token) (any, error) {
	return m.secret, nil
}

// setCookie replaces any cookie of the same name already queued on the response.
func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge int) {
	header := c.Writer.Header()
	prefix := name + "="
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", m.secure, true)
}
