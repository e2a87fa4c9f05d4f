package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-analytics/internal/model"
)

// ErrEmptyReview is returned for reviews with no text after cleanup.
var ErrEmptyReview = errors.New("review text is empty")

// TopWordsLimit is how many words the review feed reports.
const TopWordsLimit = 10

// ReviewStore persists reviews and word counts.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review, words map[string]int64) error
	Recent(ctx context.Context, limit int) ([]model.Review, error)
	TopWords(ctx context.Context, limit int) ([]model.WordCount, error)
}

// ReviewFeed is what the review page shows.
type ReviewFeed struct {
	Reviews  []model.Review    `json:"reviews"`
	TopWords []model.WordCount `json:"top_words"`
}

type ReviewService struct {
	store ReviewStore
	limit int
	log   zerolog.Logger
}

func NewReviewService(store ReviewStore, limit int, log zerolog.Logger) *ReviewService {
	if limit < 1 {
		limit = 6
	}
	return &ReviewService{
		store: store,
		limit: limit,
		log:   log.With().Str("component", "review_service").Logger(),
	}
}

// Submit stores a review. Line breaks are flattened to spaces.
func (s *ReviewService) Submit(ctx context.Context, text string) (*model.Review, error) {
	text = strings.TrimSpace(flattenLines(text))
	if text == "" {
		return nil, ErrEmptyReview
	}

	rv := &model.Review{Text: text}
	if err := s.store.Create(ctx, rv, CountWords(text)); err != nil {
		return nil, err
	}
	s.log.Info().Int64("review_id", rv.ID).Msg("Review stored")
	return rv, nil
}

// Feed returns the most recent reviews and the most frequent words.
func (s *ReviewService) Feed(ctx context.Context) (*ReviewFeed, error) {
	reviews, err := s.store.Recent(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	words, err := s.store.TopWords(ctx, TopWordsLimit)
	if err != nil {
		return nil, err
	}

	if reviews == nil {
		reviews = []model.Review{}
	}
	if words == nil {
		words = []model.WordCount{}
	}
	return &ReviewFeed{Reviews: reviews, TopWords: words}, nil
}

// CountWords counts lower-cased whitespace-separated words.
func CountWords(text string) map[string]int64 {
	counts := make(map[string]int64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		counts[w]++
	}
	return counts
}

func flattenLines(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
