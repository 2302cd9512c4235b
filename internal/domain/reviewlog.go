package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReviewLogNotFound  = errors.New("review log not found")
	ErrInvalidRating      = errors.New("rating must be 0, 1, or 2")
	ErrIdempotencyKeyOOB  = errors.New("idempotency key must be 1 to 64 characters")
)

// ReviewLog is an immutable, append-only record of a single review
// submission. (user_id, card_id, idempotency_key) is globally unique.
type ReviewLog struct {
	ID                   int64
	UserID               uuid.UUID
	CardID               uuid.UUID
	Rating               Rating
	IdempotencyKey       string
	CreatedAt            time.Time
	NextReviewAt         time.Time
	NextIntervalSeconds  int64
}
