package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlk-louis/review-scheduler/internal/domain"
)

// ScheduleRepository is the Postgres-backed repository.ScheduleRepository.
type ScheduleRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewScheduleRepository(pool *pgxpool.Pool, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{pool: pool, logger: logger.With("component", "schedule_repo")}
}

// GetOrCreateForUpdate locks the (userID, cardID) row for the
// lifetime of the enclosing transaction, creating it first if it
// doesn't exist. Two concurrent first reviews of the same card both
// attempt the insert; the loser's unique-violation is swallowed and
// it re-runs the locked SELECT, which now sees the winner's row.
func (r *ScheduleRepository) GetOrCreateForUpdate(ctx context.Context, userID, cardID uuid.UUID, now time.Time) (*domain.CardSchedule, error) {
	q := querierFromCtx(ctx, r.pool)

	sched, err := r.selectForUpdate(ctx, q, userID, cardID)
	if err == nil {
		return sched, nil
	}
	if !errors.Is(err, domain.ErrScheduleNotFound) {
		return nil, err
	}

	_, insertErr := q.Exec(ctx, `
		INSERT INTO card_schedules (user_id, card_id, streak, last_interval_seconds, next_review_at)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (user_id, card_id) DO NOTHING`,
		userID, cardID, now)
	if insertErr != nil {
		var pgErr *pgconn.PgError
		if !errors.As(insertErr, &pgErr) || pgErr.Code != "23505" {
			return nil, fmt.Errorf("create schedule: %w", insertErr)
		}
	}

	return r.selectForUpdate(ctx, q, userID, cardID)
}

func (r *ScheduleRepository) selectForUpdate(ctx context.Context, q Querier, userID, cardID uuid.UUID) (*domain.CardSchedule, error) {
	row := q.QueryRow(ctx, `
		SELECT user_id, card_id, streak, last_interval_seconds, next_review_at, created_at, updated_at
		FROM card_schedules
		WHERE user_id = $1 AND card_id = $2
		FOR UPDATE`, userID, cardID)
	return scanSchedule(row)
}

// Save writes streak, last_interval_seconds, next_review_at and bumps
// updated_at. Callers hold the row lock acquired by
// GetOrCreateForUpdate within the same transaction.
func (r *ScheduleRepository) Save(ctx context.Context, sched *domain.CardSchedule) error {
	q := querierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE card_schedules
		SET streak = $1, last_interval_seconds = $2, next_review_at = $3, updated_at = now()
		WHERE user_id = $4 AND card_id = $5`,
		sched.Streak, sched.LastIntervalSeconds, sched.NextReviewAt, sched.UserID, sched.CardID)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

// ListDueCardIDs is a plain unlocked read; it never runs inside a
// review transaction.
func (r *ScheduleRepository) ListDueCardIDs(ctx context.Context, userID uuid.UUID, until time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT card_id
		FROM card_schedules
		WHERE user_id = $1 AND next_review_at <= $2`,
		userID, until)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan due card: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due cards: %w", err)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*domain.CardSchedule, error) {
	var s domain.CardSchedule
	err := row.Scan(&s.UserID, &s.CardID, &s.Streak, &s.LastIntervalSeconds, &s.NextReviewAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	return &s, nil
}
