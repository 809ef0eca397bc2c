package domain

import "time"

// Article is a blog post owned by exactly one User.
type Article struct {
	ID         int64
	Title      string
	Content    string
	UserID     int64
	AuthorName string
	CreatedAt  time.Time
	Images     []Image
}

// Image is a stored upload attached to an article.
type Image struct {
	ID        int64
	ArticleID int64
	Filename  string
	Caption   string
}
