package service

import "errors"

var (
	// ErrNotFound indicates the requested user or article does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the requester does not own the article.
	ErrUnauthorized = errors.New("not authorized")
	// ErrInvalidArticle is returned when title or content is empty.
	ErrInvalidArticle = errors.New("title and content are required")
)
