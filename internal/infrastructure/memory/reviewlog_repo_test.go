package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
	"github.com/vlk-louis/review-scheduler/internal/infrastructure/memory"
)

func TestReviewLogRepository_FindByIdempotency_NotFound(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewReviewLogRepository(store)

	_, err := repo.FindByIdempotency(context.Background(), uuid.New(), uuid.New(), "missing")
	if err != domain.ErrReviewLogNotFound {
		t.Fatalf("FindByIdempotency = %v, want ErrReviewLogNotFound", err)
	}
}

// TestReviewLogRepository_Append_EnforcesUniqueConstraint mirrors the
// Postgres UNIQUE(user_id, card_id, idempotency_key) constraint: a
// second Append for the same key never creates a second row, and
// returns the first row with wasDuplicate=true instead.
func TestReviewLogRepository_Append_EnforcesUniqueConstraint(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewReviewLogRepository(store)
	userID, cardID := uuid.New(), uuid.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &domain.ReviewLog{
		UserID:              userID,
		CardID:              cardID,
		Rating:              domain.RatingRemembered,
		IdempotencyKey:      "k",
		NextReviewAt:        now.Add(24 * time.Hour),
		NextIntervalSeconds: 86400,
	}
	inserted, wasDuplicate, err := repo.Append(context.Background(), first)
	if err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if wasDuplicate {
		t.Fatal("first Append should not be a duplicate")
	}
	if inserted.ID == 0 {
		t.Fatal("expected a non-zero assigned ID")
	}

	second := &domain.ReviewLog{
		UserID:              userID,
		CardID:              cardID,
		Rating:              domain.RatingInstant,
		IdempotencyKey:      "k",
		NextReviewAt:        now.Add(96 * time.Hour),
		NextIntervalSeconds: 345600,
	}
	again, wasDuplicate, err := repo.Append(context.Background(), second)
	if err != nil {
		t.Fatalf("second Append: %v", err)
	}
	if !wasDuplicate {
		t.Fatal("second Append with the same key should be a duplicate")
	}
	if again.ID != inserted.ID {
		t.Fatalf("duplicate Append returned a different row: ID %d, want %d", again.ID, inserted.ID)
	}
	if again.NextIntervalSeconds != inserted.NextIntervalSeconds {
		t.Fatalf("duplicate Append leaked the second call's interval: got %d, want %d",
			again.NextIntervalSeconds, inserted.NextIntervalSeconds)
	}

	found, err := repo.FindByIdempotency(context.Background(), userID, cardID, "k")
	if err != nil {
		t.Fatalf("FindByIdempotency: %v", err)
	}
	if found.ID != inserted.ID {
		t.Fatalf("FindByIdempotency returned ID %d, want %d", found.ID, inserted.ID)
	}
}

func TestReviewLogRepository_Append_DistinctKeysCreateDistinctRows(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewReviewLogRepository(store)
	userID, cardID := uuid.New(), uuid.New()

	a, _, err := repo.Append(context.Background(), &domain.ReviewLog{
		UserID: userID, CardID: cardID, Rating: domain.RatingRemembered, IdempotencyKey: "a",
	})
	if err != nil {
		t.Fatalf("append a: %v", err)
	}
	b, _, err := repo.Append(context.Background(), &domain.ReviewLog{
		UserID: userID, CardID: cardID, Rating: domain.RatingRemembered, IdempotencyKey: "b",
	})
	if err != nil {
		t.Fatalf("append b: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("distinct idempotency keys got the same ID %d", a.ID)
	}
}
