package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

// ReviewLogRepository is the Postgres-backed repository.ReviewLogRepository.
// The unique constraint on (user_id, card_id, idempotency_key) is the
// durable half of idempotent review handling; Append's ON CONFLICT
// clause turns a concurrent duplicate insert into a read instead of
// an error.
type ReviewLogRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReviewLogRepository(pool *pgxpool.Pool, logger *slog.Logger) *ReviewLogRepository {
	return &ReviewLogRepository{pool: pool, logger: logger.With("component", "reviewlog_repo")}
}

func (r *ReviewLogRepository) FindByIdempotency(ctx context.Context, userID, cardID uuid.UUID, idemKey string) (*domain.ReviewLog, error) {
	q := querierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `
		SELECT id, user_id, card_id, rating, idempotency_key, created_at, next_review_at, next_interval_seconds
		FROM review_logs
		WHERE user_id = $1 AND card_id = $2 AND idempotency_key = $3`,
		userID, cardID, idemKey)

	return scanReviewLog(row)
}

// Append inserts log, or, if the unique key already exists, returns
// the existing row with wasDuplicate=true. When the insert wins,
// ON CONFLICT DO NOTHING RETURNING yields the new row. When the key
// already exists, RETURNING comes back empty and a separate point
// lookup fetches the existing row. A unique violation (23505) raised
// as an error instead is handled the same way, as a defensive
// fallback.
func (r *ReviewLogRepository) Append(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, bool, error) {
	q := querierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `
		INSERT INTO review_logs (user_id, card_id, rating, idempotency_key, next_review_at, next_interval_seconds)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, card_id, idempotency_key) DO NOTHING
		RETURNING id, user_id, card_id, rating, idempotency_key, created_at, next_review_at, next_interval_seconds`,
		log.UserID, log.CardID, log.Rating, log.IdempotencyKey, log.NextReviewAt, log.NextIntervalSeconds)

	inserted, err := scanReviewLog(row)
	switch {
	case err == nil:
		return inserted, false, nil
	case errors.Is(err, domain.ErrReviewLogNotFound):
		existing, findErr := r.FindByIdempotency(ctx, log.UserID, log.CardID, log.IdempotencyKey)
		if findErr != nil {
			return nil, false, fmt.Errorf("append review log: conflict but no existing row: %w", findErr)
		}
		return existing, true, nil
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, findErr := r.FindByIdempotency(ctx, log.UserID, log.CardID, log.IdempotencyKey)
			if findErr != nil {
				return nil, false, fmt.Errorf("append review log: conflict but no existing row: %w", findErr)
			}
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("append review log: %w", err)
	}
}

func scanReviewLog(row rowScanner) (*domain.ReviewLog, error) {
	var l domain.ReviewLog
	err := row.Scan(&l.ID, &l.UserID, &l.CardID, &l.Rating, &l.IdempotencyKey, &l.CreatedAt, &l.NextReviewAt, &l.NextIntervalSeconds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReviewLogNotFound
		}
		return nil, fmt.Errorf("scan review log: %w", err)
	}
	return &l, nil
}
