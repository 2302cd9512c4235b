package httptransport

import (
	"log/slog"

	sloggin "github.com/samber/slog-gin"

	"github.com/gin-gonic/gin"

	"github.com/vlk-louis/review-scheduler/internal/transport/http/handler"
	"github.com/vlk-louis/review-scheduler/internal/transport/http/middleware"
)

func NewRouter(logger *slog.Logger, reviewHandler *handler.ReviewHandler, dueHandler *handler.DueHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.POST("/reviews", reviewHandler.Create)
	r.GET("/users/:user_id/due-cards", dueHandler.List)

	return r
}
