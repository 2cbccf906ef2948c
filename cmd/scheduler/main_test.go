package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/chama-engine/internal/config"
	"github.com/segyhp/chama-engine/internal/domain"
)

type fakeRefresher struct {
	result *domain.RefreshResult
	err    error
	calls  int
}

func (f *fakeRefresher) RefreshStatuses(ctx context.Context) (*domain.RefreshResult, error) {
	f.calls++
	return f.result, f.err
}

func TestRefreshLoanStatuses_LogsPartialFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	refresher := &fakeRefresher{
		result: &domain.RefreshResult{Checked: 3, Updated: 1, Failed: 1},
		err:    errors.New("lock loan: deadlock detected"),
	}

	refreshLoanStatuses(refresher, logger)

	assert.Equal(t, 1, refresher.calls)
	assert.Contains(t, logs.String(), "deadlock detected")
	assert.Contains(t, logs.String(), "checked=3")
	assert.Contains(t, logs.String(), "failed=1")
}

func TestSetupCronJobs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	c := cron.New(cron.WithSeconds())

	cfg := &config.Config{Scheduler: config.SchedulerConfig{StatusRefreshCron: "0 0 1 * * *"}}
	assert.NoError(t, setupCronJobs(c, cfg, &fakeRefresher{}, logger))
	assert.Len(t, c.Entries(), 1)

	cfg.Scheduler.StatusRefreshCron = "every night"
	assert.Error(t, setupCronJobs(c, cfg, &fakeRefresher{}, logger))
}
