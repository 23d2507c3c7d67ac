package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultSettingsTTL = 5 * time.Minute

// Settings caches system_settings values by key. A miss is reported as
// ok == false with a nil error.
type Settings interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// RedisSettings stores settings under "settings:<key>" with a TTL.
type RedisSettings struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

type RedisOption func(*RedisSettings)

func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisSettings) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(logger *zap.Logger) RedisOption {
	return func(c *RedisSettings) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisSettings) {
		c.prefix = prefix
	}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewRedisSettings(client *redis.Client, opts ...RedisOption) *RedisSettings {
	c := &RedisSettings{
		client: client,
		ttl:    DefaultSettingsTTL,
		prefix: "settings:",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisSettings) key(key string) string {
	return c.prefix + key
}

func (c *RedisSettings) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("settings cache miss", zap.String("key", key))
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached setting %s: %w", key, err)
	}
	return value, true, nil
}

func (c *RedisSettings) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache setting %s: %w", key, err)
	}
	return nil
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemorySettings is the in-process fallback used when redis is disabled.
type MemorySettings struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySettings(ttl time.Duration) *MemorySettings {
	if ttl <= 0 {
		ttl = DefaultSettingsTTL
	}
	return &MemorySettings{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemorySettings) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expires) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (c *MemorySettings) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}
