package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"captionvote/internal/cache"
	"captionvote/internal/config"
	"captionvote/internal/models"
	"captionvote/internal/store"
	"captionvote/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var strategies = []string{config.StrategyAtomic, config.StrategyCheckThenAct}

// voteStoreStub records calls; each func field is optional.
type voteStoreStub struct {
	mu       sync.Mutex
	calls    []string
	findFn   func(call int) (*models.Vote, error)
	insertFn func(call int, v *models.Vote) error
	updateFn func(id string, value models.VoteValue) error
	finds    int
	inserts  int
}

func (s *voteStoreStub) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *voteStoreStub) Find(_ context.Context, _, _ string) (*models.Vote, error) {
	s.record("find")
	s.finds++
	if s.findFn == nil {
		return nil, nil
	}
	return s.findFn(s.finds)
}

func (s *voteStoreStub) FindMany(context.Context, string, []string) (map[string]models.VoteValue, error) {
	s.record("find_many")
	return map[string]models.VoteValue{}, nil
}

func (s *voteStoreStub) Insert(_ context.Context, v *models.Vote) error {
	s.record("insert")
	s.inserts++
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(s.inserts, v)
}

func (s *voteStoreStub) Update(_ context.Context, id string, value models.VoteValue, _ time.Time) error {
	s.record("update")
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(id, value)
}

func (s *voteStoreStub) Upsert(_ context.Context, userID, captionID string, value models.VoteValue, at time.Time) (*models.Vote, error) {
	s.record("upsert")
	return &models.Vote{ID: "v1", UserID: userID, CaptionID: captionID, Value: value, CreatedAt: at}, nil
}

func (s *voteStoreStub) Delete(context.Context, string, string) (bool, error) {
	s.record("delete")
	return true, nil
}

type countingCache struct {
	cache.FeedCache
	invalidations int
}

func (c *countingCache) Invalidate(ctx context.Context) {
	c.invalidations++
	if c.FeedCache != nil {
		c.FeedCache.Invalidate(ctx)
	}
}

func newVoteFixture(t *testing.T, strategy string) (*VoteService, *gorm.DB, *models.User, models.Caption) {
	conn := testutil.NewDB(t)
	user := testutil.CreateUser(t, conn, "a@example.com")
	caption := testutil.CreateCaptions(t, conn, 1)[0]
	svc := NewVoteService(store.NewVoteStore(conn), nil, strategy, zap.NewNop())
	return svc, conn, user, caption
}

func countVotes(t *testing.T, conn *gorm.DB, userID, captionID string) int64 {
	var n int64
	require.NoError(t, conn.Model(&models.Vote{}).Where("user_id = ? AND caption_id = ?", userID, captionID).Count(&n).Error)
	return n
}

func TestVoteService_RejectsBeforeStoreAccess(t *testing.T) {
	stub := &voteStoreStub{}
	svc := NewVoteService(stub, nil, config.StrategyCheckThenAct, zap.NewNop())
	ctx := context.Background()
	captionID := uuid.NewString()

	_, err := svc.Cast(ctx, CastVoteInput{UserID: "", CaptionID: captionID, Direction: "up"})
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.Cast(ctx, CastVoteInput{UserID: "u1", CaptionID: "not-a-uuid", Direction: "up"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Cast(ctx, CastVoteInput{UserID: "u1", CaptionID: captionID, Direction: "sideways"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Retract(ctx, "", captionID)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	assert.Empty(t, stub.calls)
}

func TestVoteService_AtomicUsesUpsert(t *testing.T) {
	stub := &voteStoreStub{}
	feed := &countingCache{}
	svc := NewVoteService(stub, feed, config.StrategyAtomic, zap.NewNop())

	vote, err := svc.Cast(context.Background(), CastVoteInput{UserID: "u1", CaptionID: uuid.NewString(), Direction: "downvote"})
	require.NoError(t, err)
	assert.Equal(t, models.Downvote, vote.Value)
	assert.Equal(t, []string{"upsert"}, stub.calls)
	assert.Equal(t, 1, feed.invalidations)
}

func TestVoteService_CheckThenActRetriesConflictAsUpdate(t *testing.T) {
	existing := &models.Vote{ID: "winner", UserID: "u1", Value: models.Upvote}
	var updatedID string
	stub := &voteStoreStub{
		findFn: func(call int) (*models.Vote, error) {
			if call == 1 {
				return nil, nil
			}
			return existing, nil
		},
		insertFn: func(int, *models.Vote) error {
			return models.NewConstraintViolation(errors.New("duplicate key value violates unique constraint"))
		},
		updateFn: func(id string, _ models.VoteValue) error {
			updatedID = id
			return nil
		},
	}
	feed := &countingCache{}
	svc := NewVoteService(stub, feed, config.StrategyCheckThenAct, zap.NewNop())

	vote, err := svc.Cast(context.Background(), CastVoteInput{UserID: "u1", CaptionID: uuid.NewString(), Direction: "down"})
	require.NoError(t, err, "a lost insert race is not surfaced")
	assert.Equal(t, []string{"find", "insert", "find", "update"}, stub.calls)
	assert.Equal(t, "winner", updatedID)
	assert.Equal(t, models.Downvote, vote.Value)
	assert.NotNil(t, vote.UpdatedAt)
	assert.Equal(t, 1, feed.invalidations)
}

func TestVoteService_CheckThenActGivesUpAfterRepeatedConflicts(t *testing.T) {
	stub := &voteStoreStub{
		insertFn: func(int, *models.Vote) error {
			return models.NewConstraintViolation(errors.New("duplicate key"))
		},
	}
	feed := &countingCache{}
	svc := NewVoteService(stub, feed, config.StrategyCheckThenAct, zap.NewNop())

	_, err := svc.Cast(context.Background(), CastVoteInput{UserID: "u1", CaptionID: uuid.NewString(), Direction: "up"})
	assert.ErrorIs(t, err, models.ErrConstraintViolation)
	assert.Equal(t, maxInsertAttempts, stub.inserts)
	assert.Zero(t, feed.invalidations)
}

func TestVoteService_CheckThenActUpdateNotFoundFails(t *testing.T) {
	stub := &voteStoreStub{
		findFn: func(int) (*models.Vote, error) {
			return &models.Vote{ID: "gone", Value: models.Upvote}, nil
		},
		updateFn: func(id string, _ models.VoteValue) error {
			return models.NewNotFoundError("vote", id)
		},
	}
	svc := NewVoteService(stub, nil, config.StrategyCheckThenAct, zap.NewNop())

	_, err := svc.Cast(context.Background(), CastVoteInput{UserID: "u1", CaptionID: uuid.NewString(), Direction: "up"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVoteService_StoreFailureIsSurfaced(t *testing.T) {
	stub := &voteStoreStub{
		findFn: func(int) (*models.Vote, error) {
			return nil, models.NewStoreUnavailable(errors.New("connection refused"))
		},
	}
	svc := NewVoteService(stub, nil, config.StrategyCheckThenAct, zap.NewNop())

	_, err := svc.Cast(context.Background(), CastVoteInput{UserID: "u1", CaptionID: uuid.NewString(), Direction: "up"})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.Equal(t, []string{"find"}, stub.calls, "store failures are not retried")
}

func TestVoteService_FlipAndIdempotence(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			svc, conn, user, caption := newVoteFixture(t, strategy)
			ctx := context.Background()
			clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
			svc.now = func() time.Time { return clock }

			up, err := svc.Cast(ctx, CastVoteInput{UserID: user.ID, CaptionID: caption.ID, Direction: "upvote"})
			require.NoError(t, err)
			assert.Equal(t, models.Upvote, up.Value)
			assert.Nil(t, up.UpdatedAt)
			assert.Equal(t, int64(1), countVotes(t, conn, user.ID, caption.ID))

			clock = clock.Add(time.Minute)
			down, err := svc.Cast(ctx, CastVoteInput{UserID: user.ID, CaptionID: caption.ID, Direction: "downvote"})
			require.NoError(t, err)
			assert.Equal(t, up.ID, down.ID)
			assert.Equal(t, models.Downvote, down.Value)
			require.NotNil(t, down.UpdatedAt)
			assert.True(t, down.UpdatedAt.Equal(clock))
			assert.Equal(t, int64(1), countVotes(t, conn, user.ID, caption.ID))

			clock = clock.Add(time.Minute)
			again, err := svc.Cast(ctx, CastVoteInput{UserID: user.ID, CaptionID: caption.ID, Direction: "downvote"})
			require.NoError(t, err)
			assert.Equal(t, up.ID, again.ID)
			assert.Equal(t, models.Downvote, again.Value)
			assert.Equal(t, int64(1), countVotes(t, conn, user.ID, caption.ID))

			stored, err := store.NewVoteStore(conn).Find(ctx, user.ID, caption.ID)
			require.NoError(t, err)
			assert.Equal(t, models.Downvote, stored.Value)
			assert.WithinDuration(t, up.CreatedAt, stored.CreatedAt, time.Second, "created_at never moves")
		})
	}
}

func TestVoteService_UnknownCaption(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			svc, _, user, _ := newVoteFixture(t, strategy)
			_, err := svc.Cast(context.Background(), CastVoteInput{UserID: user.ID, CaptionID: uuid.NewString(), Direction: "up"})
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestVoteService_ConcurrentCastsKeepOneRowPerUser(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			svc, conn, alice, caption := newVoteFixture(t, strategy)
			bob := testutil.CreateUser(t, conn, "b@example.com")
			ctx := context.Background()

			const n = 20
			var wg sync.WaitGroup
			errs := make(chan error, 2*n)
			for i := 0; i < n; i++ {
				wg.Add(2)
				direction := "up"
				if i%2 == 1 {
					direction = "down"
				}
				go func() {
					defer wg.Done()
					_, err := svc.Cast(ctx, CastVoteInput{UserID: alice.ID, CaptionID: caption.ID, Direction: direction})
					errs <- err
				}()
				go func() {
					defer wg.Done()
					_, err := svc.Cast(ctx, CastVoteInput{UserID: bob.ID, CaptionID: caption.ID, Direction: "up"})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			assert.Equal(t, int64(1), countVotes(t, conn, alice.ID, caption.ID))
			assert.Equal(t, int64(1), countVotes(t, conn, bob.ID, caption.ID))

			var total int64
			conn.Model(&models.Vote{}).Count(&total)
			assert.Equal(t, int64(2), total)
		})
	}
}

func TestVoteService_Retract(t *testing.T) {
	svc, conn, user, caption := newVoteFixture(t, config.StrategyAtomic)
	ctx := context.Background()

	_, err := svc.Cast(ctx, CastVoteInput{UserID: user.ID, CaptionID: caption.ID, Direction: "up"})
	require.NoError(t, err)

	deleted, err := svc.Retract(ctx, user.ID, caption.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, countVotes(t, conn, user.ID, caption.ID))

	deleted, err = svc.Retract(ctx, user.ID, caption.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// a retracted pair can be voted again
	_, err = svc.Cast(ctx, CastVoteInput{UserID: user.ID, CaptionID: caption.ID, Direction: "down"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countVotes(t, conn, user.ID, caption.ID))
}
