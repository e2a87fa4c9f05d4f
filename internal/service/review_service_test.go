package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/marksheet-analytics/internal/model"
)

type fakeReviewStore struct {
	created []model.Review
	words   map[string]int64
	recent  []model.Review
	top     []model.WordCount
	err     error
	limit   int
}

func (f *fakeReviewStore) Create(_ context.Context, rv *model.Review, words map[string]int64) error {
	if f.err != nil {
		return f.err
	}
	rv.ID = int64(len(f.created) + 1)
	rv.CreatedAt = time.Now()
	f.created = append(f.created, *rv)
	f.words = words
	return nil
}

func (f *fakeReviewStore) Recent(_ context.Context, limit int) ([]model.Review, error) {
	f.limit = limit
	return f.recent, f.err
}

func (f *fakeReviewStore) TopWords(_ context.Context, _ int) ([]model.WordCount, error) {
	return f.top, f.err
}

func TestReviewSubmitFlattensAndCounts(t *testing.T) {
	store := &fakeReviewStore{}
	svc := NewReviewService(store, 6, zerolog.Nop())

	rv, err := svc.Submit(context.Background(), "  Great charts\nGreat\r\nteachers view  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rv.ID)
	assert.Equal(t, "Great charts Great teachers view", rv.Text)
	assert.Equal(t, map[string]int64{"great": 2, "charts": 1, "teachers": 1, "view": 1}, store.words)
}

func TestReviewSubmitRejectsEmpty(t *testing.T) {
	svc := NewReviewService(&fakeReviewStore{}, 6, zerolog.Nop())

	_, err := svc.Submit(context.Background(), " \n\t ")
	require.ErrorIs(t, err, ErrEmptyReview)
}

func TestReviewFeed(t *testing.T) {
	store := &fakeReviewStore{}
	svc := NewReviewService(store, 0, zerolog.Nop())

	feed, err := svc.Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, store.limit, "limit falls back to six")
	assert.NotNil(t, feed.Reviews)
	assert.NotNil(t, feed.TopWords)

	store.err = errors.New("db down")
	_, err = svc.Feed(context.Background())
	require.Error(t, err)
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, map[string]int64{"a": 3, "b": 1}, CountWords("A a\tb  a"))
	assert.Empty(t, CountWords("   "))
}
