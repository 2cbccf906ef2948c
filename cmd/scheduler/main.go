package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/chama-engine/internal/bootstrap"
	"github.com/segyhp/chama-engine/internal/cache"
	"github.com/segyhp/chama-engine/internal/config"
	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
	"github.com/segyhp/chama-engine/internal/service"
)

// statusRefresher is the part of the loan service the scheduler drives.
type statusRefresher interface {
	RefreshStatuses(ctx context.Context) (*domain.RefreshResult, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := bootstrap.NewLogger(cfg.Logging, os.Stdout).With(slog.String("component", "scheduler"))
	slog.SetDefault(logger)
	logger.Info("Starting loan status scheduler...")

	db, err := bootstrap.OpenDatabase(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := bootstrap.OpenRedis(context.Background(), cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, cached schedules will expire on their own", slog.String("error", err.Error()))
	}
	defer redisClient.Close()

	repos := repository.NewRepositories(db)
	settings := service.NewSettingsProvider(repos.Settings, cfg.EngineDefaults(), logger)
	loans := service.NewLoanService(repos, cache.NewScheduleCache(redisClient, cfg.Business.ScheduleCacheTTL), settings, logger)

	// Initialize cron scheduler
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if err := setupCronJobs(c, cfg, loans, logger); err != nil {
		logger.Error("Error scheduling loan status refresh job", slog.String("error", err.Error()))
		os.Exit(1)
	}

	c.Start()
	logger.Info("Scheduler started successfully",
		slog.String("spec", cfg.Scheduler.StatusRefreshCron),
		slog.String("timezone", cfg.Scheduler.Timezone),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loans statusRefresher, logger *slog.Logger) error {
	_, err := c.AddFunc(cfg.Scheduler.StatusRefreshCron, func() {
		refreshLoanStatuses(loans, logger)
	})
	return err
}

// refreshLoanStatuses re-derives the status of every open loan: past-term
// loans become overdue and settled ones repaid.
func refreshLoanStatuses(loans statusRefresher, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	result, err := loans.RefreshStatuses(ctx)
	if err != nil {
		logger.Error("Loan status refresh finished with errors", slog.String("error", err.Error()))
	}
	if result != nil {
		logger.Info("Loan status refresh job done",
			slog.Int("checked", result.Checked),
			slog.Int("updated", result.Updated),
			slog.Int("failed", result.Failed),
			slog.Duration("took", time.Since(start)),
		)
	}
}
