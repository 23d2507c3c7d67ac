package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySettings_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemorySettings(time.Minute)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "currency_symbol")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "currency_symbol", "€"))
	value, ok, err := c.Get(ctx, "currency_symbol")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "€", value)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "currency_symbol")
	assert.False(t, ok)
}

func TestMemorySettings_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultSettingsTTL, NewMemorySettings(0).ttl)
}

func TestRedisSettings_Options(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := NewRedisSettings(client, WithTTL(30*time.Second), WithKeyPrefix("station:"), WithLogger(nil))
	assert.Equal(t, 30*time.Second, c.ttl)
	assert.Equal(t, "station:currency_symbol", c.key("currency_symbol"))
	assert.NotNil(t, c.logger)

	c = NewRedisSettings(client, WithTTL(0))
	assert.Equal(t, DefaultSettingsTTL, c.ttl)
	assert.Equal(t, "settings:currency_symbol", c.key("currency_symbol"))
}
