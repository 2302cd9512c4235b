package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/repository"
)

// DueUsecase answers the due-cards query. It is a plain read with no
// transaction and no locking — absence of a user's schedule rows is
// indistinguishable from an unknown user, by design.
type DueUsecase struct {
	schedules repository.ScheduleRepository
}

func NewDueUsecase(schedules repository.ScheduleRepository) *DueUsecase {
	return &DueUsecase{schedules: schedules}
}

func (u *DueUsecase) ListDue(ctx context.Context, userID uuid.UUID, until time.Time) ([]uuid.UUID, error) {
	ids, err := u.schedules.ListDueCardIDs(ctx, userID, until)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	return ids, nil
}
