package handler

import (
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/domain"
	"github.com/vlk-louis/review-scheduler/internal/metrics"
	"github.com/vlk-louis/review-scheduler/internal/usecase"
)

var jstLocation = time.FixedZone("JST", 9*3600)

type ReviewHandler struct {
	reviewUsecase *usecase.ReviewUsecase
	logger        *slog.Logger
}

func NewReviewHandler(reviewUsecase *usecase.ReviewUsecase, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviewUsecase: reviewUsecase, logger: logger.With("component", "review_handler")}
}

type createReviewRequest struct {
	UserID         uuid.UUID `json:"user_id" binding:"required"`
	CardID         uuid.UUID `json:"card_id" binding:"required"`
	Rating         uint8     `json:"rating"`
	IdempotencyKey string    `json:"idempotency_key" binding:"required,min=1,max=64"`
}

func (h *ReviewHandler) Create(ctx *gin.Context) {
	var req createReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating := domain.Rating(req.Rating)
	if !rating.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRating})
		return
	}
	if n := utf8.RuneCountInString(req.IdempotencyKey); n == 0 || n > 64 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIdemKey})
		return
	}

	start := time.Now()
	res, err := h.reviewUsecase.RecordReview(ctx.Request.Context(), usecase.RecordReviewInput{
		UserID:         req.UserID,
		CardID:         req.CardID,
		Rating:         rating,
		IdempotencyKey: req.IdempotencyKey,
	})
	metrics.ReviewDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("record review", "user_id", req.UserID, "card_id", req.CardID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.ReviewsRecordedTotal.WithLabelValues(boolLabel(res.WasIdempotent)).Inc()

	status := http.StatusCreated
	if res.WasIdempotent {
		status = http.StatusOK
	}

	ctx.JSON(status, gin.H{
		"next_review_utc":  res.NextReviewAt.UTC().Format(time.RFC3339),
		"next_review_jst":  res.NextReviewAt.In(jstLocation).Format(time.RFC3339),
		"interval_seconds": res.NextIntervalSeconds,
		"rating_label":     rating.Label(),
		"idempotent":       res.WasIdempotent,
	})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
