package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/chama-engine/internal/domain"
)

func setup(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, ScheduleCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewScheduleCache(client, ttl)
}

func sampleSchedule(loanID uuid.UUID, asOf time.Time) *domain.ScheduleResponse {
	return &domain.ScheduleResponse{
		LoanID: loanID.String(),
		AsOf:   asOf,
		Schedule: []domain.ScheduleRow{
			{Month: 0, Date: asOf, LoanIssued: decimal.NewFromInt(50000), ClosingBalance: decimal.NewFromInt(50000)},
		},
		Summary: domain.ScheduleSummary{Outstanding: decimal.NewFromInt(50000)},
	}
}

func TestScheduleCache_RoundTrip(t *testing.T) {
	mr, cache := setup(t, time.Hour)
	ctx := context.Background()
	loanID := uuid.New()
	asOf := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, ok, err := cache.Get(ctx, loanID, asOf)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, loanID, asOf, sampleSchedule(loanID, asOf)))

	got, ok, err := cache.Get(ctx, loanID, asOf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, loanID.String(), got.LoanID)
	assert.True(t, got.Summary.Outstanding.Equal(decimal.NewFromInt(50000)))

	assert.Equal(t, time.Hour, mr.TTL(scheduleKey(loanID)))

	// A different as-of date is a separate entry.
	_, ok, err = cache.Get(ctx, loanID, asOf.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduleCache_Invalidate(t *testing.T) {
	mr, cache := setup(t, time.Hour)
	ctx := context.Background()
	loanID := uuid.New()
	asOf := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.Set(ctx, loanID, asOf, sampleSchedule(loanID, asOf)))
	require.NoError(t, cache.Set(ctx, loanID, asOf.AddDate(0, 1, 0), sampleSchedule(loanID, asOf)))

	require.NoError(t, cache.Invalidate(ctx, loanID))

	assert.False(t, mr.Exists(scheduleKey(loanID)))
}

func TestScheduleCache_Expires(t *testing.T) {
	mr, cache := setup(t, time.Minute)
	ctx := context.Background()
	loanID := uuid.New()
	asOf := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.Set(ctx, loanID, asOf, sampleSchedule(loanID, asOf)))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, loanID, asOf)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduleCache_ServerDown(t *testing.T) {
	mr, cache := setup(t, time.Minute)
	mr.Close()

	_, _, err := cache.Get(context.Background(), uuid.New(), time.Now())
	assert.Error(t, err)
}
