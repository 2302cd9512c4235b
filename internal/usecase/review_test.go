package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
	"github.com/vlk-louis/review-scheduler/internal/infrastructure/memory"
	"github.com/vlk-louis/review-scheduler/internal/usecase"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newReviewUsecase(clk *fakeClock) *usecase.ReviewUsecase {
	store := memory.NewStore()
	return usecase.NewReviewUsecase(
		memory.NewScheduleRepository(store),
		memory.NewReviewLogRepository(store),
		memory.NewUnitOfWork(store),
		clk,
		domain.DefaultSchedulingConfig(),
	)
}

func TestRecordReview_FirstReviewUsesFirstInterval(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)

	res, err := u.RecordReview(context.Background(), usecase.RecordReviewInput{
		UserID:         uuid.New(),
		CardID:         uuid.New(),
		Rating:         domain.RatingRemembered,
		IdempotencyKey: "a",
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if res.WasIdempotent {
		t.Fatalf("expected WasIdempotent=false on first call")
	}
	if res.NextIntervalSeconds != 86400 {
		t.Fatalf("NextIntervalSeconds = %d, want 86400", res.NextIntervalSeconds)
	}
	if !res.NextReviewAt.Equal(clk.now.Add(86400 * time.Second)) {
		t.Fatalf("NextReviewAt = %v, want %v", res.NextReviewAt, clk.now.Add(86400*time.Second))
	}
}

func TestRecordReview_SameKeyIsIdempotent(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)
	ctx := context.Background()
	userID, cardID := uuid.New(), uuid.New()

	in := usecase.RecordReviewInput{UserID: userID, CardID: cardID, Rating: domain.RatingInstant, IdempotencyKey: "same"}

	first, err := u.RecordReview(ctx, in)
	if err != nil {
		t.Fatalf("first RecordReview: %v", err)
	}
	if first.WasIdempotent {
		t.Fatalf("first call should not be idempotent")
	}

	clk.now = clk.now.Add(time.Hour) // clock moves; replay must still return the original value

	second, err := u.RecordReview(ctx, in)
	if err != nil {
		t.Fatalf("second RecordReview: %v", err)
	}
	if !second.WasIdempotent {
		t.Fatalf("replay should be idempotent")
	}
	if !second.NextReviewAt.Equal(first.NextReviewAt) {
		t.Fatalf("replay NextReviewAt = %v, want %v", second.NextReviewAt, first.NextReviewAt)
	}
	if second.NextIntervalSeconds != first.NextIntervalSeconds {
		t.Fatalf("replay NextIntervalSeconds = %d, want %d", second.NextIntervalSeconds, first.NextIntervalSeconds)
	}
}

func TestRecordReview_SameKeyDifferentRatingReturnsOriginal(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)
	ctx := context.Background()
	userID, cardID := uuid.New(), uuid.New()

	first, err := u.RecordReview(ctx, usecase.RecordReviewInput{
		UserID: userID, CardID: cardID, Rating: domain.RatingRemembered, IdempotencyKey: "k",
	})
	if err != nil {
		t.Fatalf("first RecordReview: %v", err)
	}

	second, err := u.RecordReview(ctx, usecase.RecordReviewInput{
		UserID: userID, CardID: cardID, Rating: domain.RatingInstant, IdempotencyKey: "k",
	})
	if err != nil {
		t.Fatalf("second RecordReview: %v", err)
	}
	if !second.WasIdempotent {
		t.Fatalf("expected idempotent reuse regardless of differing rating")
	}
	if second.NextIntervalSeconds != first.NextIntervalSeconds {
		t.Fatalf("replay with different rating changed the stored interval: got %d, want %d",
			second.NextIntervalSeconds, first.NextIntervalSeconds)
	}
}

func TestRecordReview_IntervalSequenceIsNonDecreasing(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)
	ctx := context.Background()
	userID, cardID := uuid.New(), uuid.New()

	ratings := []domain.Rating{domain.RatingRemembered, domain.RatingInstant, domain.RatingRemembered, domain.RatingInstant}
	var prev int64
	for i, rating := range ratings {
		res, err := u.RecordReview(ctx, usecase.RecordReviewInput{
			UserID: userID, CardID: cardID, Rating: rating, IdempotencyKey: uuid.NewString(),
		})
		if err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
		if res.NextIntervalSeconds < prev {
			t.Fatalf("review %d: interval %d decreased from %d", i, res.NextIntervalSeconds, prev)
		}
		prev = res.NextIntervalSeconds
	}
}

func TestRecordReview_DontRememberResetsToRetryInterval(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)
	ctx := context.Background()
	userID, cardID := uuid.New(), uuid.New()

	if _, err := u.RecordReview(ctx, usecase.RecordReviewInput{
		UserID: userID, CardID: cardID, Rating: domain.RatingInstant, IdempotencyKey: "1",
	}); err != nil {
		t.Fatalf("review 1: %v", err)
	}

	res, err := u.RecordReview(ctx, usecase.RecordReviewInput{
		UserID: userID, CardID: cardID, Rating: domain.RatingDontRemember, IdempotencyKey: "2",
	})
	if err != nil {
		t.Fatalf("review 2: %v", err)
	}
	if res.NextIntervalSeconds != 60 {
		t.Fatalf("NextIntervalSeconds = %d, want 60", res.NextIntervalSeconds)
	}
}

func TestRecordReview_TwelveRepeatedInstantReviewsStayUnderCap(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)
	ctx := context.Background()
	userID, cardID := uuid.New(), uuid.New()

	var res usecase.RecordReviewResult
	var err error
	for i := 0; i < 12; i++ {
		res, err = u.RecordReview(ctx, usecase.RecordReviewInput{
			UserID: userID, CardID: cardID, Rating: domain.RatingInstant, IdempotencyKey: uuid.NewString(),
		})
		if err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
	}
	if res.NextIntervalSeconds > 365*24*3600 {
		t.Fatalf("NextIntervalSeconds = %d exceeds cap", res.NextIntervalSeconds)
	}
}

// TestRecordReview_ConcurrentDuplicatesCollapseToOneLeader sends many
// goroutines the same (user, card, idempotency_key) at once. Run with
// -race: singleflight should collapse them into one store write, and
// exactly one caller may see WasIdempotent=false.
func TestRecordReview_ConcurrentDuplicatesCollapseToOneLeader(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	u := newReviewUsecase(clk)
	ctx := context.Background()

	in := usecase.RecordReviewInput{
		UserID:         uuid.New(),
		CardID:         uuid.New(),
		Rating:         domain.RatingRemembered,
		IdempotencyKey: "concurrent-dup",
	}

	const callers = 20
	results := make([]usecase.RecordReviewResult, callers)
	errs := make([]error, callers)

	var start sync.WaitGroup
	var done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = u.RecordReview(ctx, in)
		}(i)
	}
	start.Done()
	done.Wait()

	var leaders int
	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
		if !results[i].WasIdempotent {
			leaders++
		}
		if results[i].NextIntervalSeconds != results[0].NextIntervalSeconds {
			t.Fatalf("caller %d NextIntervalSeconds = %d, want %d", i, results[i].NextIntervalSeconds, results[0].NextIntervalSeconds)
		}
		if !results[i].NextReviewAt.Equal(results[0].NextReviewAt) {
			t.Fatalf("caller %d NextReviewAt = %v, want %v", i, results[i].NextReviewAt, results[0].NextReviewAt)
		}
	}
	if leaders != 1 {
		t.Fatalf("expected exactly one caller with WasIdempotent=false, got %d", leaders)
	}
}
