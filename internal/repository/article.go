package repository

import (
	"context"

	"blogdesk/internal/domain"
)

// ArticleRepository exposes persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) (int64, error)
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Article, error)
}

// ImageRepository manages image metadata attached to articles.
type ImageRepository interface {
	Create(ctx context.Context, image *domain.Image) (int64, error)
	ListByArticle(ctx context.Context, articleID int64) ([]domain.Image, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Image, error)
}
