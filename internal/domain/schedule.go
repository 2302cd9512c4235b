package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrScheduleNotFound = errors.New("card schedule not found")

// CardSchedule is the mutable per-(user, card) scheduling state.
// A row is created lazily on the first review and never deleted by
// the core.
type CardSchedule struct {
	UserID              uuid.UUID
	CardID              uuid.UUID
	Streak              uint32
	LastIntervalSeconds int64
	NextReviewAt        time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsFirstReview reports whether no review has ever advanced this
// schedule's interval.
func (s *CardSchedule) IsFirstReview() bool {
	return s.LastIntervalSeconds == 0
}
