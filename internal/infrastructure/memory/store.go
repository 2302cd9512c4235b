package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

type reviewLogKey struct {
	userID  uuid.UUID
	cardID  uuid.UUID
	idemKey string
}

// Store is the state shared by ScheduleRepository, ReviewLogRepository
// and UnitOfWork: one map per table plus a row-level keyLocker that
// stands in for Postgres's SELECT ... FOR UPDATE.
type Store struct {
	mu        sync.Mutex
	schedules map[scheduleKey]domain.CardSchedule
	logs      map[reviewLogKey]domain.ReviewLog
	nextLogID int64
	rowLocks  *keyLocker
}

func NewStore() *Store {
	return &Store{
		schedules: make(map[scheduleKey]domain.CardSchedule),
		logs:      make(map[reviewLogKey]domain.ReviewLog),
		rowLocks:  newKeyLocker(),
	}
}

type heldLocksCtxKey struct{}

type lockSet struct {
	mus []*sync.Mutex
}

// lockRow takes the row lock for key and, if ctx is running inside a
// UnitOfWork.RunInTx, registers it to be released when that
// transaction ends rather than immediately — so the lock spans the
// whole read-modify-write sequence of a review, not just this call.
func (s *Store) lockRow(ctx context.Context, key scheduleKey) {
	m := s.rowLocks.get(key)
	m.Lock()
	if held, ok := ctx.Value(heldLocksCtxKey{}).(*lockSet); ok {
		held.mus = append(held.mus, m)
		return
	}
	m.Unlock()
}

// UnitOfWork is the in-memory repository.UnitOfWork. It provides the
// row locking of a transaction but not its atomicity: writes made
// inside fn are applied to the Store immediately and are not undone
// when fn returns an error.
type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	held := &lockSet{}
	err := fn(context.WithValue(ctx, heldLocksCtxKey{}, held))
	for _, m := range held.mus {
		m.Unlock()
	}
	return err
}
