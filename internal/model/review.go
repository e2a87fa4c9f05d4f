package model

import "time"

// Review is a free-text feedback entry. Reviews are append-only.
type Review struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// WordCount is an aggregated word frequency across all reviews.
type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// CreateReviewRequest is the payload for submitting a review.
type CreateReviewRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}
