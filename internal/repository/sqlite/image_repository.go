package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
)

type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) repository.ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image *domain.Image) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO images (filename, caption, article_id)
VALUES (?, ?, ?)`,
		image.Filename,
		image.Caption,
		image.ArticleID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("image last insert id: %w", err)
	}
	image.ID = id
	return id, nil
}

func (r *ImageRepository) ListByArticle(ctx context.Context, articleID int64) ([]domain.Image, error) {
	return r.query(ctx, `
SELECT id, article_id, filename, caption
FROM images
WHERE article_id=?
ORDER BY id ASC`, articleID)
}

// ListByUser returns every image attached to any article authored by userID.
func (r *ImageRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Image, error) {
	return r.query(ctx, `
SELECT i.id, i.article_id, i.filename, i.caption
FROM images i
JOIN articles a ON a.id = i.article_id
WHERE a.user_id=?
ORDER BY i.id ASC`, userID)
}

func (r *ImageRepository) query(ctx context.Context, query string, args ...any) ([]domain.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var image domain.Image
		if err := rows.Scan(&image.ID, &image.ArticleID, &image.Filename, &image.Caption); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, image)
	}

	return images, rows.Err()
}
