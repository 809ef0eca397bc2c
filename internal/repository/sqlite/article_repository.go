package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
)

const selectArticles = `
SELECT a.id, a.title, a.content, a.user_id, u.username, a.created_at
FROM articles a
JOIN users u ON u.id = a.user_id`

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) (int64, error) {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO articles (title, content, created_at, user_id)
VALUES (?, ?, ?, ?)`,
		article.Title,
		article.Content,
		article.CreatedAt,
		article.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	article.ID = id
	return id, nil
}

// Update overwrites title and content. Authorship and creation time never change.
func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE articles
SET title=?, content=?
WHERE id=?`,
		article.Title,
		article.Content,
		article.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return expectAffected(res, "article")
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE article_id=?`, id); err != nil {
		return fmt.Errorf("delete article images: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if err := expectAffected(res, "article"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit article delete: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Get(ctx context.Context, id int64) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, selectArticles+`
WHERE a.id=?`, id)
	return scanArticle(row)
}

func (r *ArticleRepository) List(ctx context.Context) ([]domain.Article, error) {
	return r.query(ctx, selectArticles+`
ORDER BY a.created_at DESC, a.id DESC`)
}

func (r *ArticleRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Article, error) {
	return r.query(ctx, selectArticles+`
WHERE a.user_id=?
ORDER BY a.created_at DESC, a.id DESC`, userID)
}

func (r *ArticleRepository) query(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var article domain.Article
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.UserID,
		&article.AuthorName,
		&article.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}
	return &article, nil
}
