package store

import (
	"context"

	"captionvote/internal/models"

	"gorm.io/gorm"
)

// CaptionStore is read-only: captions are authored elsewhere.
type CaptionStore interface {
	Page(ctx context.Context, offset, limit int) ([]models.Caption, error)
	Count(ctx context.Context) (int64, error)
}

type captionStore struct {
	db *gorm.DB
}

func NewCaptionStore(db *gorm.DB) CaptionStore {
	return &captionStore{db: db}
}

// Page returns captions newest first, with their image preloaded.
func (s *captionStore) Page(ctx context.Context, offset, limit int) ([]models.Caption, error) {
	var captions []models.Caption
	err := s.db.WithContext(ctx).
		Preload("Image").
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&captions).Error
	if err != nil {
		return nil, translate(err)
	}
	return captions, nil
}

func (s *captionStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Caption{}).Count(&total).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}
