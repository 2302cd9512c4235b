// Package memory provides in-process implementations of
// repository.ScheduleRepository, repository.ReviewLogRepository and
// repository.UnitOfWork, grounded on the same "single mutex guarding a
// map" shape used elsewhere in the corpus for in-memory stores. It
// backs the usecase tests and can stand in for Postgres in a
// single-instance deployment.
package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

type scheduleKey struct {
	userID uuid.UUID
	cardID uuid.UUID
}

// ScheduleRepository is the in-memory repository.ScheduleRepository.
// GetOrCreateForUpdate takes Store's per-(user,card) row lock, which
// UnitOfWork.RunInTx holds until the enclosing transaction ends —
// standing in for Postgres's SELECT ... FOR UPDATE.
type ScheduleRepository struct {
	store *Store
}

func NewScheduleRepository(store *Store) *ScheduleRepository {
	return &ScheduleRepository{store: store}
}

func (r *ScheduleRepository) GetOrCreateForUpdate(ctx context.Context, userID, cardID uuid.UUID, now time.Time) (*domain.CardSchedule, error) {
	key := scheduleKey{userID, cardID}
	r.store.lockRow(ctx, key)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sched, ok := r.store.schedules[key]
	if !ok {
		sched = domain.CardSchedule{
			UserID:       userID,
			CardID:       cardID,
			NextReviewAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		r.store.schedules[key] = sched
	}
	out := sched
	return &out, nil
}

func (r *ScheduleRepository) Save(ctx context.Context, sched *domain.CardSchedule) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := scheduleKey{sched.UserID, sched.CardID}
	existing, ok := r.store.schedules[key]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	existing.Streak = sched.Streak
	existing.LastIntervalSeconds = sched.LastIntervalSeconds
	existing.NextReviewAt = sched.NextReviewAt
	existing.UpdatedAt = sched.UpdatedAt
	r.store.schedules[key] = existing
	return nil
}

func (r *ScheduleRepository) ListDueCardIDs(ctx context.Context, userID uuid.UUID, until time.Time) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var ids []uuid.UUID
	for key, sched := range r.store.schedules {
		if key.userID != userID {
			continue
		}
		if !sched.NextReviewAt.After(until) {
			ids = append(ids, key.cardID)
		}
	}
	return ids, nil
}
