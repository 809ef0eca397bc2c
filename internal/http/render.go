package http

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"blogdesk/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}).ParseFS(templateFS, "templates/*.html"))

type imageView struct {
	URL     string
	Caption string
}

type articleView struct {
	domain.Article
	ImageViews []imageView
}

// render adds the current user and pending flash messages to data.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	data["CurrentUser"] = currentUser(c)
	data["Flashes"] = h.sessions.Flashes(c)
	c.HTML(status, name, data)
}

func (h *Handler) articleView(c *gin.Context, article domain.Article) articleView {
	view := articleView{Article: article}
	for _, image := range article.Images {
		url, err := h.store.URL(c.Request.Context(), image.Filename)
		if err != nil {
			h.logger.WithError(err).WithField("image", image.Filename).Warn("resolve image url")
			continue
		}
		view.ImageViews = append(view.ImageViews, imageView{URL: url, Caption: image.Caption})
	}
	return view
}

func (h *Handler) articleViews(c *gin.Context, articles []domain.Article) []articleView {
	views := make([]articleView, len(articles))
	for i := range articles {
		views[i] = h.articleView(c, articles[i])
	}
	return views
}
