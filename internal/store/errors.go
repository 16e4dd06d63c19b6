// Package store is the persistence layer for captions, users and votes.
package store

import (
	"errors"
	"strings"

	"captionvote/internal/models"

	"gorm.io/gorm"
)

// translate maps driver errors onto the application error kinds.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueConstraintError(err):
		return models.NewConstraintViolation(err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &models.AppError{Kind: models.KindNotFound, Message: "record not found", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyError(err):
		return &models.AppError{Kind: models.KindNotFound, Message: "caption not found", Err: err}
	}
	return models.NewStoreUnavailable(err)
}

// isUniqueConstraintError catches unique violations that reach us untranslated.
func isUniqueConstraintError(err error) bool {
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func isForeignKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") || strings.Contains(msg, "23503")
}
