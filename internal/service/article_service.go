package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
	"blogdesk/internal/storage"
)

// ImageUpload is a file received alongside an article form.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

func (u *ImageUpload) present() bool {
	return u != nil && u.Filename != "" && u.Body != nil
}

// ArticleService coordinates article operations backed by repositories and image storage.
type ArticleService interface {
	ListAll(ctx context.Context) ([]domain.Article, error)
	ListOwn(ctx context.Context, userID int64) ([]domain.Article, error)
	Get(ctx context.Context, id int64) (*domain.Article, error)
	Create(ctx context.Context, authorID int64, title, content string, upload *ImageUpload) (*domain.Article, error)
	Update(ctx context.Context, id, requesterID int64, title, content string, upload *ImageUpload) (*domain.Article, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

type articleService struct {
	articles repository.ArticleRepository
	images   repository.ImageRepository
	store    storage.Service
	logger   logrus.FieldLogger
}

func NewArticleService(articles repository.ArticleRepository, images repository.ImageRepository, store storage.Service, logger logrus.FieldLogger) ArticleService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &articleService{
		articles: articles,
		images:   images,
		store:    store,
		logger:   logger,
	}
}

func (s *articleService) ListAll(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, articles)
}

func (s *articleService) ListOwn(ctx context.Context, userID int64) ([]domain.Article, error) {
	articles, err := s.articles.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withImages(ctx, articles)
}

func (s *articleService) Get(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	images, err := s.images.ListByArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Images = images
	return article, nil
}

// Create inserts the article first and the optional image afterwards, as two
// separate writes. A failure while storing the image leaves the article in place.
func (s *articleService) Create(ctx context.Context, authorID int64, title, content string, upload *ImageUpload) (*domain.Article, error) {
	if err := validateArticle(title, content); err != nil {
		return nil, err
	}

	article := &domain.Article{
		Title:   title,
		Content: content,
		UserID:  authorID,
	}
	if _, err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	if upload.present() {
		if _, err := s.attach(ctx, article.ID, upload); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, article.ID)
}

// Update replaces title and content. A new upload is appended; existing images stay.
func (s *articleService) Update(ctx context.Context, id, requesterID int64, title, content string, upload *ImageUpload) (*domain.Article, error) {
	article, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := validateArticle(title, content); err != nil {
		return nil, err
	}

	article.Title = title
	article.Content = content
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, mapNotFound(err)
	}

	if upload.present() {
		if _, err := s.attach(ctx, article.ID, upload); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, article.ID)
}

func (s *articleService) Delete(ctx context.Context, id, requesterID int64) error {
	if _, err := s.owned(ctx, id, requesterID); err != nil {
		return err
	}

	images, err := s.images.ListByArticle(ctx, id)
	if err != nil {
		return err
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}

	removeImageFiles(ctx, s.store, s.logger, images)
	return nil
}

func (s *articleService) owned(ctx context.Context, id, requesterID int64) (*domain.Article, error) {
	article, err := s.articles.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if article.UserID != requesterID {
		return nil, ErrUnauthorized
	}
	return article, nil
}

func (s *articleService) attach(ctx context.Context, articleID int64, upload *ImageUpload) (*domain.Image, error) {
	if s.store == nil {
		return nil, fmt.Errorf("image storage not configured")
	}

	stored, err := s.store.Save(ctx, storage.UniqueName(upload.Filename), upload.Body)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	image := &domain.Image{
		ArticleID: articleID,
		Filename:  stored,
	}
	if _, err := s.images.Create(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *articleService) withImages(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	for i := range articles {
		images, err := s.images.ListByArticle(ctx, articles[i].ID)
		if err != nil {
			return nil, err
		}
		articles[i].Images = images
	}
	return articles, nil
}

func validateArticle(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return ErrInvalidArticle
	}
	return nil
}
