package store

import (
	"context"
	"errors"

	"captionvote/internal/models"

	"gorm.io/gorm"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type userStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *userStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *userStore) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("user", arg)
	}
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
