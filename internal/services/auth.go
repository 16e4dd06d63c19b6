package services

import (
	"context"
	"errors"
	"strings"

	"captionvote/internal/models"
	"captionvote/internal/store"
	"captionvote/internal/utils"

	"go.uber.org/zap"
)

// AuthService checks credentials. It stands in for the external identity
// provider: everything downstream only sees the resulting user id.
type AuthService struct {
	users store.UserStore
	log   *zap.Logger
}

func NewAuthService(users store.UserStore, log *zap.Logger) *AuthService {
	return &AuthService{users: users, log: log}
}

// Login returns the user for valid credentials and Unauthenticated otherwise.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, models.NewValidationError("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewUnauthenticatedError()
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		s.log.Info("login rejected", zap.String("user_id", user.ID))
		return nil, models.NewUnauthenticatedError()
	}
	return user, nil
}

// CurrentUser resolves a session's user id, Unauthenticated if it no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewUnauthenticatedError()
	}
	return user, err
}
