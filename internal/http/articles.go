package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blogdesk/internal/metrics"
	"blogdesk/internal/service"
	"blogdesk/internal/session"
)

func (h *Handler) home(c *gin.Context) {
	articles, err := h.articles.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{"Articles": h.articleViews(c, articles)})
}

func (h *Handler) showArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		h.articleError(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "article.html", gin.H{"Article": h.articleView(c, *article)})
}

func (h *Handler) dashboard(c *gin.Context) {
	articles, err := h.articles.ListOwn(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", gin.H{"Articles": h.articleViews(c, articles)})
}

func (h *Handler) newArticleForm(c *gin.Context) {
	h.render(c, http.StatusOK, "article_form.html", gin.H{"Action": "/article/new"})
}

func (h *Handler) createArticle(c *gin.Context) {
	upload, closeUpload, err := formImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeUpload()

	_, err = h.articles.Create(c.Request.Context(), currentUser(c).ID, c.PostForm("title"), c.PostForm("content"), upload)
	if err != nil {
		h.articleError(c, err, "/article/new")
		return
	}
	metrics.RecordArticleWrite("create")
	if upload != nil {
		metrics.RecordImageStored()
	}
	h.redirectWith(c, "/dashboard", session.FlashSuccess, "Article has been published.")
}

func (h *Handler) editArticleForm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		h.articleError(c, err, "")
		return
	}
	if article.UserID != currentUser(c).ID {
		h.articleError(c, service.ErrUnauthorized, "")
		return
	}
	h.render(c, http.StatusOK, "article_form.html", gin.H{
		"Action":  editPath(id),
		"Article": h.articleView(c, *article),
	})
}

func (h *Handler) updateArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	upload, closeUpload, err := formImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeUpload()

	_, err = h.articles.Update(c.Request.Context(), id, currentUser(c).ID, c.PostForm("title"), c.PostForm("content"), upload)
	if err != nil {
		h.articleError(c, err, editPath(id))
		return
	}
	metrics.RecordArticleWrite("update")
	if upload != nil {
		metrics.RecordImageStored()
	}
	h.redirectWith(c, "/dashboard", session.FlashSuccess, "Article has been changed.")
}

func (h *Handler) deleteArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	if err := h.articles.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		h.articleError(c, err, "")
		return
	}
	metrics.RecordArticleWrite("delete")
	h.redirectWith(c, "/dashboard", session.FlashInfo, "Article has been deleted.")
}

// articleError maps article service errors. form is where validation failures return to.
func (h *Handler) articleError(c *gin.Context, err error, form string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrUnauthorized):
		h.redirectWith(c, "/dashboard", session.FlashDanger, "You are not authorized.")
	case errors.Is(err, service.ErrInvalidArticle) && form != "":
		h.redirectWith(c, form, session.FlashDanger, "Title and content are required.")
	default:
		h.fail(c, err)
	}
}

// formImage returns the optional "image" upload. A form without a file part,
// or one that is not multipart at all, carries no upload. The returned func
// closes the file.
func formImage(c *gin.Context) (*service.ImageUpload, func(), error) {
	noop := func() {}
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("read image upload: %w", err)
	}
	if header.Filename == "" {
		return nil, noop, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("open image upload: %w", err)
	}
	return &service.ImageUpload{Filename: header.Filename, Body: file}, func() { _ = file.Close() }, nil
}

func editPath(id int64) string {
	return "/article/" + strconv.FormatInt(id, 10) + "/edit"
}
