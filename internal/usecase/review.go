package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vlk-louis/review-scheduler/internal/clock"
	"github.com/vlk-louis/review-scheduler/internal/domain"
	"github.com/vlk-louis/review-scheduler/internal/repository"
)

// ReviewUsecase implements the review-recording protocol: idempotent
// lookup, locked schedule update, scheduling computation, and dual-row
// persistence, all inside one unit of work.
type ReviewUsecase struct {
	schedules repository.ScheduleRepository
	logs      repository.ReviewLogRepository
	uow       repository.UnitOfWork
	clock     clock.Clock
	cfg       domain.SchedulingConfig

	// sf collapses identical in-flight requests (same idempotency key)
	// into one transaction attempt. It is an optimization only — the
	// unique constraint on review_logs is what actually guarantees
	// exactly-once effect; sf just avoids hitting the row lock and the
	// store twice for requests that arrive back-to-back.
	sf singleflight.Group
}

func NewReviewUsecase(
	schedules repository.ScheduleRepository,
	logs repository.ReviewLogRepository,
	uow repository.UnitOfWork,
	clk clock.Clock,
	cfg domain.SchedulingConfig,
) *ReviewUsecase {
	return &ReviewUsecase{schedules: schedules, logs: logs, uow: uow, clock: clk, cfg: cfg}
}

// RecordReviewInput is the validated request for a single review
// submission. Validation (UUID well-formedness, rating range,
// idempotency key length) happens at the HTTP boundary; by the time it
// reaches RecordReview every field is trusted.
type RecordReviewInput struct {
	UserID         uuid.UUID
	CardID         uuid.UUID
	Rating         domain.Rating
	IdempotencyKey string
}

// RecordReviewResult is what the HTTP handler projects into the
// response body.
type RecordReviewResult struct {
	NextReviewAt        time.Time
	NextIntervalSeconds int64
	WasIdempotent       bool
}

func (u *ReviewUsecase) RecordReview(ctx context.Context, in RecordReviewInput) (RecordReviewResult, error) {
	sfKey := fmt.Sprintf("%s:%s:%s", in.UserID, in.CardID, in.IdempotencyKey)

	executed := false
	v, err, shared := u.sf.Do(sfKey, func() (any, error) {
		executed = true
		return u.recordReview(ctx, in)
	})
	if err != nil {
		return RecordReviewResult{}, err
	}
	result := v.(RecordReviewResult)
	// sf.Do reports shared=true to every caller of a call that had
	// duplicates, the one that ran recordReview included. Only that
	// caller performed the insert, so every other caller (shared but
	// not executed) sees idempotent=true regardless of what it saw.
	if shared && !executed {
		result.WasIdempotent = true
	}
	return result, nil
}

func (u *ReviewUsecase) recordReview(ctx context.Context, in RecordReviewInput) (RecordReviewResult, error) {
	// Step 1: fast idempotent read, no lock.
	if existing, err := u.logs.FindByIdempotency(ctx, in.UserID, in.CardID, in.IdempotencyKey); err == nil {
		return resultFromLog(existing, true), nil
	} else if !errors.Is(err, domain.ErrReviewLogNotFound) {
		return RecordReviewResult{}, fmt.Errorf("check idempotency: %w", err)
	}

	var result RecordReviewResult

	err := u.uow.RunInTx(ctx, func(ctx context.Context) error {
		now := u.clock.Now()

		// Step 2: lock the schedule row for this (user, card), creating it if absent.
		sched, err := u.schedules.GetOrCreateForUpdate(ctx, in.UserID, in.CardID, now)
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}

		// Step 3: re-check idempotency inside the transaction, closing the
		// race where two first-ever requests with the same key overlap.
		if existing, err := u.logs.FindByIdempotency(ctx, in.UserID, in.CardID, in.IdempotencyKey); err == nil {
			result = resultFromLog(existing, true)
			return nil
		} else if !errors.Is(err, domain.ErrReviewLogNotFound) {
			return fmt.Errorf("recheck idempotency: %w", err)
		}

		// Step 4: compute the next interval.
		isFirst := sched.IsFirstReview()
		nextInterval := domain.ScheduleNext(u.cfg, in.Rating, sched.LastIntervalSeconds, isFirst)
		nextAt := now.Add(time.Duration(nextInterval) * time.Second)

		// Step 5: mutate and persist the schedule.
		sched.LastIntervalSeconds = nextInterval
		sched.NextReviewAt = nextAt
		if in.Rating == domain.RatingDontRemember {
			sched.Streak = 0
		} else {
			sched.Streak++
		}
		if err := u.schedules.Save(ctx, sched); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}

		// Step 6: append the log. A unique-violation here means a writer
		// slipped past step 3, which step 3 is meant to prevent; the
		// fallback still resolves it by deferring to the winning row.
		log := &domain.ReviewLog{
			UserID:              in.UserID,
			CardID:              in.CardID,
			Rating:              in.Rating,
			IdempotencyKey:      in.IdempotencyKey,
			NextReviewAt:        nextAt,
			NextIntervalSeconds: nextInterval,
		}
		appended, wasDuplicate, err := u.logs.Append(ctx, log)
		if err != nil {
			return fmt.Errorf("append review log: %w", err)
		}

		result = resultFromLog(appended, wasDuplicate)
		return nil
	})
	if err != nil {
		return RecordReviewResult{}, err
	}
	return result, nil
}

func resultFromLog(log *domain.ReviewLog, wasIdempotent bool) RecordReviewResult {
	return RecordReviewResult{
		NextReviewAt:        log.NextReviewAt,
		NextIntervalSeconds: log.NextIntervalSeconds,
		WasIdempotent:       wasIdempotent,
	}
}
