package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vlk-louis/review-scheduler/config"
	"github.com/vlk-louis/review-scheduler/internal/clock"
	"github.com/vlk-louis/review-scheduler/internal/domain"
	"github.com/vlk-louis/review-scheduler/internal/health"
	"github.com/vlk-louis/review-scheduler/internal/infrastructure/postgres"
	ctxlog "github.com/vlk-louis/review-scheduler/internal/log"
	"github.com/vlk-louis/review-scheduler/internal/metrics"
	httptransport "github.com/vlk-louis/review-scheduler/internal/transport/http"
	"github.com/vlk-louis/review-scheduler/internal/transport/http/handler"
	"github.com/vlk-louis/review-scheduler/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	scheduleRepo := postgres.NewScheduleRepository(pool, logger)
	reviewLogRepo := postgres.NewReviewLogRepository(pool, logger)
	uow := postgres.NewTxManager(pool)

	reviewUsecase := usecase.NewReviewUsecase(scheduleRepo, reviewLogRepo, uow, clock.RealClock{}, domain.DefaultSchedulingConfig())
	dueUsecase := usecase.NewDueUsecase(scheduleRepo)

	reviewHandler := handler.NewReviewHandler(reviewUsecase, logger)
	dueHandler := handler.NewDueHandler(dueUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, reviewHandler, dueHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
