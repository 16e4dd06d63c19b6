package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image 配图，由外部创作系统写入
type Image struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	URL       string    `gorm:"not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Caption 被投票的内容单元。本系统只读，like_count 由外部维护
type Caption struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	LikeCount int       `gorm:"default:0" json:"like_count"`
	ImageID   *string   `gorm:"type:uuid;index" json:"image_id,omitempty"`
	Image     *Image    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (c *Caption) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ImageURL 返回配图地址，没有配图时为空
func (c Caption) ImageURL() string {
	if c.Image == nil {
		return ""
	}
	return c.Image.URL
}
