package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	pendingFlashesKey = "session.flashes"
	flashTTL          = 5 * time.Minute
)

// Flash categories understood by the templates.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashClaims struct {
	Flashes []Flash `json:"flashes"`
	jwt.RegisteredClaims
}

// AddFlash queues a notice for the next page the client renders.
func (m *Manager) AddFlash(c *gin.Context, category, message string) {
	pending := append(m.pending(c), Flash{Category: category, Message: message})
	c.Set(pendingFlashesKey, pending)

	now := m.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{
		Flashes: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}).SignedString(m.secret)
	if err != nil {
		_ = c.Error(err)
		return
	}
	m.setCookie(c, m.flashCookie, token, int(flashTTL.Seconds()))
}

// Flashes returns and consumes every pending notice: those carried in over the
// cookie plus any queued during this request.
func (m *Manager) Flashes(c *gin.Context) []Flash {
	var flashes []Flash
	raw, err := c.Cookie(m.flashCookie)
	carried := err == nil && raw != ""
	if carried {
		var claims flashClaims
		_, err := jwt.ParseWithClaims(raw, &claims, m.keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(m.now),
		)
		if err == nil {
			flashes = append(flashes, claims.Flashes...)
		}
	}
	pending := m.pending(c)
	flashes = append(flashes, pending...)

	if carried || len(pending) > 0 {
		c.Set(pendingFlashesKey, []Flash(nil))
		m.setCookie(c, m.flashCookie, "", -1)
	}
	return flashes
}

func (m *Manager) pending(c *gin.Context) []Flash {
	v, ok := c.Get(pendingFlashesKey)
	if !ok {
		return nil
	}
	flashes, _ := v.([]Flash)
	return flashes
}
