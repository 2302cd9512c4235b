package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
	"github.com/vlk-louis/review-scheduler/internal/infrastructure/memory"
	"github.com/vlk-louis/review-scheduler/internal/usecase"
)

func TestListDue_IncludesOverdueExcludesFuture(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	reviewU := usecase.NewReviewUsecase(
		memory.NewScheduleRepository(store),
		memory.NewReviewLogRepository(store),
		memory.NewUnitOfWork(store),
		clk,
		domain.DefaultSchedulingConfig(),
	)
	dueU := usecase.NewDueUsecase(memory.NewScheduleRepository(store))
	ctx := context.Background()
	userID := uuid.New()
	cardA, cardB := uuid.New(), uuid.New()

	if _, err := reviewU.RecordReview(ctx, usecase.RecordReviewInput{
		UserID: userID, CardID: cardA, Rating: domain.RatingDontRemember, IdempotencyKey: "a",
	}); err != nil {
		t.Fatalf("review card A: %v", err)
	}
	if _, err := reviewU.RecordReview(ctx, usecase.RecordReviewInput{
		UserID: userID, CardID: cardB, Rating: domain.RatingInstant, IdempotencyKey: "b",
	}); err != nil {
		t.Fatalf("review card B: %v", err)
	}

	soon := clk.now.Add(2 * time.Minute)
	due, err := dueU.ListDue(ctx, userID, soon)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if !containsUUID(due, cardA) {
		t.Fatalf("expected due list to include card A (retry in 60s), got %v", due)
	}
	if containsUUID(due, cardB) {
		t.Fatalf("expected due list to exclude card B (4 days out), got %v", due)
	}

	past := clk.now.Add(-24 * time.Hour)
	due, err = dueU.ListDue(ctx, userID, past)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected empty due list for a past instant, got %v", due)
	}
}

func TestListDue_UnknownUserReturnsEmpty(t *testing.T) {
	store := memory.NewStore()
	dueU := usecase.NewDueUsecase(memory.NewScheduleRepository(store))

	due, err := dueU.ListDue(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected empty due list for unknown user, got %v", due)
	}
}

func containsUUID(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
