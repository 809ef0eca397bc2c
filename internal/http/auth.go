package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogdesk/internal/metrics"
	"blogdesk/internal/service"
	"blogdesk/internal/session"
)

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{})
}

func (h *Handler) login(c *gin.Context) {
	user, err := h.users.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.RecordLogin(false)
			h.redirectWith(c, "/login", session.FlashDanger, "Invalid login data.")
			return
		}
		h.fail(c, err)
		return
	}

	if err := h.sessions.Start(c, user.ID); err != nil {
		h.fail(c, err)
		return
	}
	metrics.RecordLogin(true)
	h.logger.WithField("user", user.Username).Info("user logged in")
	h.redirectWith(c, "/dashboard", session.FlashSuccess, "Login successful.")
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.End(c); err != nil {
		h.fail(c, err)
		return
	}
	h.redirectWith(c, "/login", session.FlashInfo, "You have been logged out.")
}
