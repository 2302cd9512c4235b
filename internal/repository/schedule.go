package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

// ScheduleRepository depends on an interface, not a concrete store:
// the usecase can run against Postgres in production and an
// in-memory backend in tests without changing a line of orchestration
// logic. Methods that mutate state must be called inside a
// UnitOfWork.RunInTx callback so the lock they take is held for the
// lifetime of the review; ListDueCardIDs is a plain unlocked read.
type ScheduleRepository interface {
	// GetOrCreateForUpdate returns the schedule row for (userID,
	// cardID) locked against concurrent writers for the lifetime of
	// the enclosing transaction. If the row does not exist it is
	// created with (streak=0, last_interval_seconds=0,
	// next_review_at=now) first, tolerating a concurrent insert of
	// the same key by retrying the locked fetch.
	GetOrCreateForUpdate(ctx context.Context, userID, cardID uuid.UUID, now time.Time) (*domain.CardSchedule, error)

	// Save persists streak, last_interval_seconds, and next_review_at
	// for sched. Only these three fields and the row's updated_at
	// timestamp are written.
	Save(ctx context.Context, sched *domain.CardSchedule) error

	// ListDueCardIDs returns every card id for userID whose
	// next_review_at is at or before until. Order is unspecified.
	ListDueCardIDs(ctx context.Context, userID uuid.UUID, until time.Time) ([]uuid.UUID, error)
}
