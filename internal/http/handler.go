package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogdesk/internal/domain"
	"blogdesk/internal/metrics"
	"blogdesk/internal/service"
	"blogdesk/internal/session"
	"blogdesk/internal/storage"
)

// Config carries the routing options that are not services.
type Config struct {
	// StaticDir is served under /static when set.
	StaticDir string
	Metrics   bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	cfg      Config
	articles service.ArticleService
	users    service.UserService
	sessions *session.Manager
	store    storage.Service
	logger   logrus.FieldLogger
}

func NewHandler(cfg Config, articles service.ArticleService, users service.UserService, sessions *session.Manager, store storage.Service, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		cfg:      cfg,
		articles: articles,
		users:    users,
		sessions: sessions,
		store:    store,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(templates)

	router.Use(requestLogger(h.logger))
	if h.cfg.Metrics {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// registered ahead of identify so they never touch the session store
	if h.cfg.StaticDir != "" {
		router.Static("/static", h.cfg.StaticDir)
	}
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	router.Use(h.identify)

	router.GET("/", h.home)
	router.GET("/article/:id", h.showArticle)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)

	authed := router.Group("/", h.requireAuth)
	{
		authed.GET("/dashboard", h.dashboard)

		authed.GET("/article/new", h.newArticleForm)
		authed.POST("/article/new", h.createArticle)
		authed.GET("/article/:id/edit", h.editArticleForm)
		authed.POST("/article/:id/edit", h.updateArticle)
		authed.GET("/article/:id/delete", h.deleteArticle)
		authed.POST("/article/:id/delete", h.deleteArticle)

		authed.GET("/user_management", h.userManagement)
		authed.GET("/create_user", h.newUserForm)
		authed.POST("/create_user", h.createUser)
		authed.GET("/edit_user/:id", h.editUserForm)
		authed.POST("/edit_user/:id", h.updateUser)
		authed.GET("/delete_user/:id", h.deleteUser)
		authed.POST("/delete_user/:id", h.deleteUser)
	}

	router.NoRoute(h.notFound)
}

const currentUserKey = "blog.currentUser"

// identify resolves the session cookie into the request-scoped current user.
func (h *Handler) identify(c *gin.Context) {
	userID, ok, err := h.sessions.UserID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if ok {
		user, err := h.users.GetByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(currentUserKey, user)
		case !errors.Is(err, service.ErrNotFound):
			h.fail(c, err)
			return
		}
	}
	c.Next()
}

func (h *Handler) requireAuth(c *gin.Context) {
	if currentUser(c) == nil {
		h.sessions.AddFlash(c, session.FlashInfo, "You must be logged in to access this page.")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func (h *Handler) redirectWith(c *gin.Context, location, category, message string) {
	h.sessions.AddFlash(c, category, message)
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{})
	c.Abort()
}

// fail answers storage and other unexpected faults with a 500.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	c.AbortWithStatus(http.StatusInternalServerError)
}

// paramID parses the :id route parameter. Non-numeric ids are treated as missing.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
