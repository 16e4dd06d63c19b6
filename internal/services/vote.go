package services

import (
	"context"
	"errors"
	"time"

	"captionvote/internal/cache"
	"captionvote/internal/config"
	"captionvote/internal/models"
	"captionvote/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxInsertAttempts bounds the check-then-act loop. Each lost insert race turns
// into an update on the next pass, so two attempts suffice unless the row is
// also being deleted concurrently.
const maxInsertAttempts = 3

// VoteService reconciles a vote intent against the stored row for (user, caption).
type VoteService struct {
	votes    store.VoteStore
	feed     cache.FeedCache
	strategy string
	log      *zap.Logger
	now      func() time.Time
}

// NewVoteService wires the reconciler. feed may be nil when nothing is cached.
func NewVoteService(votes store.VoteStore, feed cache.FeedCache, strategy string, log *zap.Logger) *VoteService {
	if strategy == "" {
		strategy = config.StrategyAtomic
	}
	return &VoteService{
		votes:    votes,
		feed:     feed,
		strategy: strategy,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CastVoteInput is a vote intent: who, on what, which way.
type CastVoteInput struct {
	UserID    string
	CaptionID string
	Direction string
}

// Cast records the intent so that exactly one row exists for the pair and holds
// the last cast direction. Recasting the same direction only moves updated_at.
func (s *VoteService) Cast(ctx context.Context, in CastVoteInput) (*models.Vote, error) {
	if in.UserID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	if err := validateCaptionID(in.CaptionID); err != nil {
		return nil, err
	}
	value, err := models.ParseDirection(in.Direction)
	if err != nil {
		return nil, err
	}

	var vote *models.Vote
	if s.strategy == config.StrategyCheckThenAct {
		vote, err = s.castCheckThenAct(ctx, in.UserID, in.CaptionID, value)
	} else {
		vote, err = s.votes.Upsert(ctx, in.UserID, in.CaptionID, value, s.now())
	}
	if err != nil {
		s.log.Warn("vote failed",
			zap.String("user_id", in.UserID),
			zap.String("caption_id", in.CaptionID),
			zap.Stringer("direction", value),
			zap.Error(err),
		)
		return nil, err
	}

	s.invalidateFeed(ctx)
	s.log.Debug("vote recorded",
		zap.String("user_id", in.UserID),
		zap.String("caption_id", in.CaptionID),
		zap.Stringer("direction", value),
	)
	return vote, nil
}

func (s *VoteService) castCheckThenAct(ctx context.Context, userID, captionID string, value models.VoteValue) (*models.Vote, error) {
	var lastErr error
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		existing, err := s.votes.Find(ctx, userID, captionID)
		if err != nil {
			return nil, err
		}

		now := s.now()
		if existing != nil {
			if err := s.votes.Update(ctx, existing.ID, value, now); err != nil {
				return nil, err
			}
			existing.Value = value
			existing.UpdatedAt = &now
			return existing, nil
		}

		vote := &models.Vote{UserID: userID, CaptionID: captionID, Value: value, CreatedAt: now}
		err = s.votes.Insert(ctx, vote)
		if err == nil {
			return vote, nil
		}
		if !errors.Is(err, models.ErrConstraintViolation) {
			return nil, err
		}
		// another request inserted the row between Find and Insert; go again as an update
		s.log.Debug("vote insert lost race, retrying as update",
			zap.String("user_id", userID),
			zap.String("caption_id", captionID),
			zap.Int("attempt", attempt+1),
		)
		lastErr = err
	}
	return nil, lastErr
}

// Retract deletes the user's vote on the caption. It reports whether a vote existed.
func (s *VoteService) Retract(ctx context.Context, userID, captionID string) (bool, error) {
	if userID == "" {
		return false, models.NewUnauthenticatedError()
	}
	if err := validateCaptionID(captionID); err != nil {
		return false, err
	}
	deleted, err := s.votes.Delete(ctx, userID, captionID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidateFeed(ctx)
	}
	return deleted, nil
}

func (s *VoteService) invalidateFeed(ctx context.Context) {
	if s.feed != nil {
		s.feed.Invalidate(ctx)
	}
}

func validateCaptionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.NewValidationError("invalid caption id %q", id)
	}
	return nil
}
