package services

import (
	"context"
	"math"
	"time"

	"captionvote/internal/cache"
	"captionvote/internal/config"
	"captionvote/internal/models"
	"captionvote/internal/store"

	"go.uber.org/zap"
)

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = config.MaxPerPage

// FeedService loads a page of captions and the viewer's votes on exactly those captions.
type FeedService struct {
	captions store.CaptionStore
	votes    store.VoteStore
	cache    cache.FeedCache
	ttl      time.Duration
	log      *zap.Logger
}

// NewFeedService wires the feed. feedCache may be nil to disable page caching.
func NewFeedService(captions store.CaptionStore, votes store.VoteStore, feedCache cache.FeedCache, ttl time.Duration, log *zap.Logger) *FeedService {
	return &FeedService{
		captions: captions,
		votes:    votes,
		cache:    feedCache,
		ttl:      ttl,
		log:      log,
	}
}

// FeedPage is one page of the feed annotated with the viewer's votes.
type FeedPage struct {
	Captions   []models.Caption            `json:"items"`
	Total      int64                       `json:"total_count"`
	Page       int                         `json:"page"`
	PerPage    int                         `json:"per_page"`
	TotalPages int                         `json:"total_pages"`
	Votes      map[string]models.VoteValue `json:"votes"`
}

// AnnotatedCaption pairs a caption with the viewer's vote; Vote is 0 when absent.
type AnnotatedCaption struct {
	models.Caption
	Vote models.VoteValue
}

// Annotated merges Votes onto Captions by id.
func (p *FeedPage) Annotated() []AnnotatedCaption {
	out := make([]AnnotatedCaption, len(p.Captions))
	for i, c := range p.Captions {
		out[i] = AnnotatedCaption{Caption: c, Vote: p.Votes[c.ID]}
	}
	return out
}

// Page returns 1-based page `page` of size perPage. Total counts every caption
// regardless of paging.
func (s *FeedService) Page(ctx context.Context, userID string, page, perPage int) (*FeedPage, error) {
	if userID == "" {
		return nil, models.NewUnauthenticatedError()
	}
	if page < 1 {
		return nil, models.NewValidationError("page must be >= 1, got %d", page)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, models.NewValidationError("per_page must be between 1 and %d, got %d", MaxPerPage, perPage)
	}

	items, err := s.items(ctx, page, perPage)
	if err != nil {
		return nil, err
	}

	votes, err := s.Annotate(ctx, userID, items.Captions)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(items.Total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	return &FeedPage{
		Captions:   items.Captions,
		Total:      items.Total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Votes:      votes,
	}, nil
}

// Annotate looks up the user's votes for the given captions in one batched query.
func (s *FeedService) Annotate(ctx context.Context, userID string, captions []models.Caption) (map[string]models.VoteValue, error) {
	ids := make([]string, len(captions))
	for i, c := range captions {
		ids[i] = c.ID
	}
	return s.votes.FindMany(ctx, userID, ids)
}

func (s *FeedService) items(ctx context.Context, page, perPage int) (*cache.Page, error) {
	key := cache.PageKey(page, perPage)
	cacheable := false
	var gen int64
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
		// read before the database so a vote landing in between discards this page
		var err error
		if gen, err = s.cache.Generation(ctx); err != nil {
			s.log.Warn("feed cache generation unavailable", zap.Error(err))
		} else {
			cacheable = true
		}
	}

	total, err := s.captions.Count(ctx)
	if err != nil {
		return nil, err
	}
	captions, err := s.captions.Page(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	items := &cache.Page{Captions: captions, Total: total}
	if cacheable {
		s.cache.Set(ctx, key, gen, items, s.ttl)
	}
	return items, nil
}
