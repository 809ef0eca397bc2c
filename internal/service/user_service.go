package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"blogdesk/internal/domain"
	"blogdesk/internal/repository"
	"blogdesk/internal/storage"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when a username is already taken by another account.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrSelfDelete is returned when a user tries to delete their own account.
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrInvalidUser is returned when a required user field is empty.
	ErrInvalidUser = errors.New("username and password are required")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password is too long")
)

// UserService describes user lifecycle operations.
type UserService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, username, password string) (*domain.User, error)
	Update(ctx context.Context, id int64, username, password string) (*domain.User, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

type userService struct {
	users  repository.UserRepository
	images repository.ImageRepository
	store  storage.Service
	logger logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, images repository.ImageRepository, store storage.Service, logger logrus.FieldLogger) UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &userService{
		users:  users,
		images: images,
		store:  store,
		logger: logger,
	}
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) Create(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidUser
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
	}
	// the unique index is authoritative; the lookup above only short-circuits the common case
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

// Update always replaces the username and replaces the password only when one is given.
func (s *userService) Update(ctx context.Context, id int64, username, password string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUser
	}

	existing, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != user.ID:
		return nil, ErrUserAlreadyExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user.Username = username
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, mapNotFound(err)
	}
	return sanitizeUser(user), nil
}

// Delete removes the user together with their articles, images and sessions.
func (s *userService) Delete(ctx context.Context, id, requesterID int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return mapNotFound(err)
	}
	if id == requesterID {
		return ErrSelfDelete
	}

	images, err := s.images.ListByUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}

	removeImageFiles(ctx, s.store, s.logger, images)
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func removeImageFiles(ctx context.Context, store storage.Service, logger logrus.FieldLogger, images []domain.Image) {
	if store == nil {
		return
	}
	for _, image := range images {
		if err := store.Remove(ctx, image.Filename); err != nil {
			logger.WithError(err).WithField("image", image.Filename).Warn("remove stored image")
		}
	}
}
