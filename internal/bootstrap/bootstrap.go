// Package bootstrap opens the shared infrastructure used by the server and
// the scheduler.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/segyhp/chama-engine/internal/config"
	"github.com/segyhp/chama-engine/internal/repository"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenDatabase connects to Postgres, applying migrations first when enabled.
func OpenDatabase(cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	if cfg.AutoMigrate {
		applied, err := repository.Migrate(cfg.URL)
		if err != nil {
			return nil, err
		}
		logger.Info("Database migrations checked", slog.Bool("applied", applied))
	}

	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// OpenRedis returns a client and reports whether the server answered a ping.
// A client is returned either way so the cache can recover later.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewRateLimiter returns nil when rate limiting is disabled. It stores
// counters in Redis when available and in process memory otherwise.
func NewRateLimiter(cfg config.RateLimitConfig, client *redis.Client, redisUp bool, logger *slog.Logger) (*limiter.Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit: %w", err)
	}

	if client != nil && redisUp {
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   "chama:ratelimit",
			MaxRetry: 3,
		})
		if err == nil {
			return limiter.New(store, rate), nil
		}
		logger.Warn("Falling back to in-memory rate limit store", slog.String("error", err.Error()))
	}

	return limiter.New(memory.NewStore(), rate), nil
}
