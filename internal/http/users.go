package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blogdesk/internal/service"
	"blogdesk/internal/session"
)

func (h *Handler) userManagement(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "user_management.html", gin.H{"Users": users})
}

func (h *Handler) newUserForm(c *gin.Context) {
	h.render(c, http.StatusOK, "user_form.html", gin.H{"Action": "/create_user"})
}

func (h *Handler) createUser(c *gin.Context) {
	_, err := h.users.Create(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	switch {
	case err == nil:
		h.redirectWith(c, "/user_management", session.FlashSuccess, "User has been created!")
	case errors.Is(err, service.ErrUserAlreadyExists):
		h.redirectWith(c, "/create_user", session.FlashDanger, "Username already exists.")
	case errors.Is(err, service.ErrInvalidUser):
		h.redirectWith(c, "/create_user", session.FlashDanger, "Username and password are required.")
	case errors.Is(err, service.ErrPasswordTooLong):
		h.redirectWith(c, "/create_user", session.FlashDanger, "Password is too long.")
	default:
		h.fail(c, err)
	}
}

func (h *Handler) editUserForm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "user_form.html", gin.H{
		"Action": userEditPath(id),
		"User":   user,
	})
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	_, err := h.users.Update(c.Request.Context(), id, c.PostForm("username"), c.PostForm("password"))
	switch {
	case err == nil:
		h.redirectWith(c, "/user_management", session.FlashSuccess, "User has been updated.")
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrUserAlreadyExists):
		h.redirectWith(c, userEditPath(id), session.FlashDanger, "This username is already taken.")
	case errors.Is(err, service.ErrInvalidUser):
		h.redirectWith(c, userEditPath(id), session.FlashDanger, "Username is required.")
	case errors.Is(err, service.ErrPasswordTooLong):
		h.redirectWith(c, userEditPath(id), session.FlashDanger, "Password is too long.")
	default:
		h.fail(c, err)
	}
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	err := h.users.Delete(c.Request.Context(), id, currentUser(c).ID)
	switch {
	case err == nil:
		h.redirectWith(c, "/user_management", session.FlashInfo, "User has been deleted.")
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrSelfDelete):
		h.redirectWith(c, "/user_management", session.FlashDanger, "You cannot delete yourself.")
	default:
		h.fail(c, err)
	}
}

func userEditPath(id int64) string {
	return "/edit_user/" + strconv.FormatInt(id, 10)
}
