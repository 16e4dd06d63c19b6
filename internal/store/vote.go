package store

import (
	"context"
	"errors"
	"time"

	"captionvote/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteStore holds at most one row per (user, caption).
type VoteStore interface {
	// Find returns nil, nil when the user has not voted on the caption.
	Find(ctx context.Context, userID, captionID string) (*models.Vote, error)
	// FindMany returns the user's votes restricted to captionIDs, keyed by caption id.
	FindMany(ctx context.Context, userID string, captionIDs []string) (map[string]models.VoteValue, error)
	// Insert fails with a constraint violation if the pair already has a row.
	Insert(ctx context.Context, vote *models.Vote) error
	// Update fails with NotFound if voteID no longer exists.
	Update(ctx context.Context, voteID string, value models.VoteValue, updatedAt time.Time) error
	// Upsert inserts or updates the row keyed on (user_id, caption_id) in one statement.
	Upsert(ctx context.Context, userID, captionID string, value models.VoteValue, at time.Time) (*models.Vote, error)
	// Delete removes the pair's row and reports whether one existed.
	Delete(ctx context.Context, userID, captionID string) (bool, error)
}

type voteStore struct {
	db *gorm.DB
}

func NewVoteStore(db *gorm.DB) VoteStore {
	return &voteStore{db: db}
}

func (s *voteStore) Find(ctx context.Context, userID, captionID string) (*models.Vote, error) {
	return findVote(s.db.WithContext(ctx), userID, captionID)
}

func findVote(tx *gorm.DB, userID, captionID string) (*models.Vote, error) {
	var vote models.Vote
	err := tx.Where("user_id = ? AND caption_id = ?", userID, captionID).Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (s *voteStore) FindMany(ctx context.Context, userID string, captionIDs []string) (map[string]models.VoteValue, error) {
	votes := make(map[string]models.VoteValue, len(captionIDs))
	if len(captionIDs) == 0 {
		return votes, nil
	}

	var rows []struct {
		CaptionID string
		Value     models.VoteValue
	}
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("caption_id, value").
		Where("user_id = ? AND caption_id IN ?", userID, captionIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	for _, r := range rows {
		votes[r.CaptionID] = r.Value
	}
	return votes, nil
}

func (s *voteStore) Insert(ctx context.Context, vote *models.Vote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now().UTC()
	}
	return translate(s.db.WithContext(ctx).Create(vote).Error)
}

func (s *voteStore) Update(ctx context.Context, voteID string, value models.VoteValue, updatedAt time.Time) error {
	if !value.Valid() {
		return models.NewValidationError("vote value must be 1 or -1, got %d", int(value))
	}
	result := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("id = ?", voteID).
		Updates(map[string]interface{}{
			"value":      value,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("vote", voteID)
	}
	return nil
}

func (s *voteStore) Upsert(ctx context.Context, userID, captionID string, value models.VoteValue, at time.Time) (*models.Vote, error) {
	if !value.Valid() {
		return nil, models.NewValidationError("vote value must be 1 or -1, got %d", int(value))
	}

	var stored *models.Vote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// created_at only lands on insert; a conflict touches value and updated_at
		vote := models.Vote{
			UserID:    userID,
			CaptionID: captionID,
			Value:     value,
			CreatedAt: at,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "caption_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      value,
				"updated_at": at,
			}),
		}).Create(&vote).Error; err != nil {
			return err
		}

		var err error
		stored, err = findVote(tx, userID, captionID)
		if err == nil && stored == nil {
			err = models.NewNotFoundError("vote", userID+"/"+captionID)
		}
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return stored, nil
}

func (s *voteStore) Delete(ctx context.Context, userID, captionID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND caption_id = ?", userID, captionID).
		Delete(&models.Vote{})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}
