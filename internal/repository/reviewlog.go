package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

// ReviewLogRepository persists the immutable review event stream.
// FindByIdempotency may be called outside a transaction (the fast
// idempotent read) or inside one (the in-transaction re-check); both
// implementations must honor whichever unit of work, if any, ctx
// carries.
type ReviewLogRepository interface {
	// FindByIdempotency returns the review log for (userID, cardID,
	// idemKey), or domain.ErrReviewLogNotFound if none exists.
	FindByIdempotency(ctx context.Context, userID, cardID uuid.UUID, idemKey string) (*domain.ReviewLog, error)

	// Append inserts a new review log row. If a row with the same
	// (userID, cardID, idemKey) already exists, Append returns that
	// row with wasDuplicate=true instead of erroring.
	Append(ctx context.Context, log *domain.ReviewLog) (result *domain.ReviewLog, wasDuplicate bool, err error)
}
