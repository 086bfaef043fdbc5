package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/janus/internal/hedge"
	"github.com/fortuna/janus/internal/picks"
)

const (
	keyPrefix = "janus"
	// live lines outlive any single game
	liveLineTTL = 12 * time.Hour
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client   *redis.Client
	hedgeTTL time.Duration
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(ctx context.Context, redisURL string, hedgeTTL time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewFromClient(client, hedgeTTL), nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client, hedgeTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   client,
		hedgeTTL: hedgeTTL,
	}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// LiveLineKey is the key holding a pick's live line overlay
func LiveLineKey(pickID string) string {
	return fmt.Sprintf("%s:liveline:%s", keyPrefix, pickID)
}

// HedgeKey is the key holding a pick's latest hedge action
func HedgeKey(pickID string) string {
	return fmt.Sprintf("%s:hedge:%s", keyPrefix, pickID)
}

// SetLiveLine stores the current book line for a pick
func (rc *RedisCache) SetLiveLine(ctx context.Context, pickID string, line picks.LiveLine) error {
	return rc.setJSON(ctx, LiveLineKey(pickID), line, liveLineTTL)
}

// GetLiveLine returns the stored line or ErrCacheMiss
func (rc *RedisCache) GetLiveLine(ctx context.Context, pickID string) (*picks.LiveLine, error) {
	var line picks.LiveLine
	if err := rc.getJSON(ctx, LiveLineKey(pickID), &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// SetLatestHedge stores the most recent hedge action for a pick
func (rc *RedisCache) SetLatestHedge(ctx context.Context, action *hedge.Action) error {
	return rc.setJSON(ctx, HedgeKey(action.PickID), action, rc.hedgeTTL)
}

// GetLatestHedge returns the last hedge action or ErrCacheMiss
func (rc *RedisCache) GetLatestHedge(ctx context.Context, pickID string) (*hedge.Action, error) {
	var action hedge.Action
	if err := rc.getJSON(ctx, HedgeKey(pickID), &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// DeletePick removes all cached state for a pick
func (rc *RedisCache) DeletePick(ctx context.Context, pickID string) error {
	return rc.client.Del(ctx, LiveLineKey(pickID), HedgeKey(pickID)).Err()
}

func (rc *RedisCache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := rc.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (rc *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) error {
	data, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
