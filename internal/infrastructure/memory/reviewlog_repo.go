package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

// ReviewLogRepository is the in-memory repository.ReviewLogRepository.
type ReviewLogRepository struct {
	store *Store
}

func NewReviewLogRepository(store *Store) *ReviewLogRepository {
	return &ReviewLogRepository{store: store}
}

func (r *ReviewLogRepository) FindByIdempotency(ctx context.Context, userID, cardID uuid.UUID, idemKey string) (*domain.ReviewLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	log, ok := r.store.logs[reviewLogKey{userID, cardID, idemKey}]
	if !ok {
		return nil, domain.ErrReviewLogNotFound
	}
	out := log
	return &out, nil
}

func (r *ReviewLogRepository) Append(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := reviewLogKey{log.UserID, log.CardID, log.IdempotencyKey}
	if existing, ok := r.store.logs[key]; ok {
		out := existing
		return &out, true, nil
	}

	r.store.nextLogID++
	stored := *log
	stored.ID = r.store.nextLogID
	r.store.logs[key] = stored

	out := stored
	return &out, false, nil
}
