package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/chama-engine/internal/bootstrap"
	"github.com/segyhp/chama-engine/internal/cache"
	"github.com/segyhp/chama-engine/internal/config"
	"github.com/segyhp/chama-engine/internal/handler"
	"github.com/segyhp/chama-engine/internal/repository"
	"github.com/segyhp/chama-engine/internal/service"
	"github.com/segyhp/chama-engine/pkg/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := bootstrap.NewLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	// Initialize database
	db, err := bootstrap.OpenDatabase(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := bootstrap.OpenRedis(context.Background(), cfg.Redis)
	redisUp := err == nil
	if err != nil {
		logger.Warn("Redis unavailable, schedules will not be cached", slog.String("error", err.Error()))
	}
	defer redisClient.Close()

	rateLimiter, err := bootstrap.NewRateLimiter(cfg.RateLimit, redisClient, redisUp, logger)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories and services
	repos := repository.NewRepositories(db)
	settings := service.NewSettingsProvider(repos.Settings, cfg.EngineDefaults(), logger)
	scheduleCache := cache.NewScheduleCache(redisClient, cfg.Business.ScheduleCacheTTL)

	v := validation.New()
	router := handler.NewRouter(handler.Handlers{
		Members:   handler.NewMemberHandler(service.NewMemberService(repos, logger), v),
		Ledger:    handler.NewLedgerHandler(service.NewLedgerService(repos, logger), v),
		Loans:     handler.NewLoanHandler(service.NewLoanService(repos, scheduleCache, settings, logger), v),
		Dividends: handler.NewDividendHandler(service.NewDividendService(repos, settings, logger), v),
		Health:    handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
	}, logger, rateLimiter)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", slog.String("addr", server.Addr), slog.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("Server exited")
}
