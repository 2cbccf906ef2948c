package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/chama-engine/internal/config"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("loan_id", "abc"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "abc", entry["loan_id"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf).Debug("schedule built")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="schedule built"`)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Host: mr.Host(), Port: mr.Port()}

	client, err := OpenRedis(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	client, err = OpenRedis(context.Background(), cfg)
	assert.Error(t, err)
	assert.NotNil(t, client)
}

func TestNewRateLimiter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	l, err := NewRateLimiter(config.RateLimitConfig{Enabled: false}, nil, false, logger)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = NewRateLimiter(config.RateLimitConfig{Enabled: true, Rate: "1-M"}, nil, false, logger)
	require.NoError(t, err)
	require.NotNil(t, l)

	ctx := context.Background()
	first, err := l.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, first.Reached)
	second, err := l.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, second.Reached)

	_, err = NewRateLimiter(config.RateLimitConfig{Enabled: true, Rate: "lots"}, nil, false, logger)
	assert.Error(t, err)
}
