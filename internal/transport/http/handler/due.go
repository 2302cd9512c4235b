package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vlk-louis/review-scheduler/internal/metrics"
	"github.com/vlk-louis/review-scheduler/internal/usecase"
)

type DueHandler struct {
	dueUsecase *usecase.DueUsecase
	logger     *slog.Logger
}

func NewDueHandler(dueUsecase *usecase.DueUsecase, logger *slog.Logger) *DueHandler {
	return &DueHandler{dueUsecase: dueUsecase, logger: logger.With("component", "due_handler")}
}

func (h *DueHandler) List(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUserID})
		return
	}

	untilParam := ctx.Query("until")
	until, err := time.Parse(time.RFC3339, untilParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUntil})
		return
	}
	until = until.UTC()

	start := time.Now()
	cardIDs, err := h.dueUsecase.ListDue(ctx.Request.Context(), userID, until)
	metrics.DueQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("list due cards", "user_id", userID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	if cardIDs == nil {
		cardIDs = []uuid.UUID{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"until_utc": until.Format(time.RFC3339),
		"until_jst": until.In(jstLocation).Format(time.RFC3339),
		"card_ids":  cardIDs,
	})
}
