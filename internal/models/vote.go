package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteValue is the signed unit stored on a vote row. Only Upvote and Downvote exist;
// a retracted vote is an absent row.
type VoteValue int

const (
	Upvote   VoteValue = 1
	Downvote VoteValue = -1
)

// Valid reports whether v is +1 or -1.
func (v VoteValue) Valid() bool {
	return v == Upvote || v == Downvote
}

func (v VoteValue) String() string {
	switch v {
	case Upvote:
		return "up"
	case Downvote:
		return "down"
	}
	return "invalid"
}

// ParseDirection maps an incoming direction token to a VoteValue.
// Unknown tokens are a validation error, never coerced.
func ParseDirection(token string) (VoteValue, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "up", "upvote", "1", "+1":
		return Upvote, nil
	case "down", "downvote", "-1":
		return Downvote, nil
	}
	return 0, NewValidationError("unknown vote direction %q", token)
}

// Vote 一个用户对一条 caption 的投票。(user_id, caption_id) 上的唯一索引是
// 防止重复行的最终保障
type Vote struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_vote_user_caption,priority:1" json:"user_id"`
	CaptionID string     `gorm:"type:uuid;not null;uniqueIndex:idx_vote_user_caption,priority:2;index" json:"caption_id"`
	Caption   *Caption   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Value     VoteValue  `gorm:"not null;check:chk_vote_value,value IN (1, -1)" json:"value"` // 1 or -1
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if !v.Value.Valid() {
		return NewValidationError("vote value must be 1 or -1, got %d", int(v.Value))
	}
	return nil
}
