package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/marksheet-analytics/internal/model"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create stores a review and adds its word counts in one transaction.
func (r *ReviewRepository) Create(ctx context.Context, rv *model.Review, words map[string]int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := tx.QueryRow(ctx,
		`INSERT INTO reviews (text) VALUES ($1) RETURNING id, created_at`,
		rv.Text).Scan(&rv.ID, &rv.CreatedAt); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	if len(words) > 0 {
		keys := make([]string, 0, len(words))
		counts := make([]int64, 0, len(words))
		for w, n := range words {
			keys = append(keys, w)
			counts = append(counts, n)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO review_words (word, count)
			SELECT u.word, u.count
			FROM UNNEST($1::text[], $2::bigint[]) AS u (word, count)
			ON CONFLICT (word) DO UPDATE
			SET count = review_words.count + EXCLUDED.count
		`, keys, counts)
		if err != nil {
			return fmt.Errorf("upsert review words: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns the newest reviews first.
func (r *ReviewRepository) Recent(ctx context.Context, limit int) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, text, created_at FROM reviews ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Review, error) {
		var rv model.Review
		err := row.Scan(&rv.ID, &rv.Text, &rv.CreatedAt)
		return rv, err
	})
}

// TopWords returns the most frequent words, ties broken alphabetically.
func (r *ReviewRepository) TopWords(ctx context.Context, limit int) ([]model.WordCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT word, count FROM review_words ORDER BY count DESC, word ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []model.WordCount
	for rows.Next() {
		var wc model.WordCount
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, err
		}
		words = append(words, wc)
	}
	return words, rows.Err()
}
