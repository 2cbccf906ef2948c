// Package cache keeps projected loan schedules in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/pkg/utils"
)

// ScheduleCache stores one projected schedule per loan and as-of date.
type ScheduleCache interface {
	// Get reports a miss with ok=false and a nil error.
	Get(ctx context.Context, loanID uuid.UUID, asOf time.Time) (schedule *domain.ScheduleResponse, ok bool, err error)
	Set(ctx context.Context, loanID uuid.UUID, asOf time.Time, schedule *domain.ScheduleResponse) error
	// Invalidate drops every cached schedule of the loan.
	Invalidate(ctx context.Context, loanID uuid.UUID) error
}

type redisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScheduleCache(client *redis.Client, ttl time.Duration) ScheduleCache {
	return &redisScheduleCache{client: client, ttl: ttl}
}

func scheduleKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s:schedule", loanID)
}

func (c *redisScheduleCache) Get(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*domain.ScheduleResponse, bool, error) {
	raw, err := c.client.HGet(ctx, scheduleKey(loanID), asOf.Format(utils.DateLayout)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var schedule domain.ScheduleResponse
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil, false, fmt.Errorf("decode cached schedule: %w", err)
	}
	return &schedule, true, nil
}

func (c *redisScheduleCache) Set(ctx context.Context, loanID uuid.UUID, asOf time.Time, schedule *domain.ScheduleResponse) error {
	raw, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	key := scheduleKey(loanID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, asOf.Format(utils.DateLayout), raw)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (c *redisScheduleCache) Invalidate(ctx context.Context, loanID uuid.UUID) error {
	return c.client.Del(ctx, scheduleKey(loanID)).Err()
}
