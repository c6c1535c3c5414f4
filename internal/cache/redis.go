package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RachanaRJadav/arecanut-ai/internal/config"
	"github.com/RachanaRJadav/arecanut-ai/internal/model"

	"github.com/go-redis/redis/v8"
)

const analyticsKeyPrefix = "analytics:"

// AnalyticsCache is the read-side cache for computed analytics
// summaries. A miss is (nil, nil); callers recompute on any error.
type AnalyticsCache interface {
	GetAnalytics(ctx context.Context, userID string) (*model.AnalyticsSummary, error)
	SetAnalytics(ctx context.Context, userID string, summary *model.AnalyticsSummary) error
	InvalidateAnalytics(ctx context.Context, userID string) error
}

type RedisClient struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisClient{client: rdb, cfg: cfg}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache builds a TTL-bound cache over an established redis
// connection. Entries are invalidated on batch submission so cached
// aggregates never go stale relative to an owner's own writes.
func NewAnalyticsCache(redisClient *RedisClient, cfg *config.Config) AnalyticsCache {
	return &redisAnalyticsCache{
		client: redisClient.client,
		ttl:    cfg.Redis.AnalyticsTTL,
	}
}

func (c *redisAnalyticsCache) GetAnalytics(ctx context.Context, userID string) (*model.AnalyticsSummary, error) {
	data, err := c.client.Get(ctx, analyticsKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var summary model.AnalyticsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *redisAnalyticsCache) SetAnalytics(ctx context.Context, userID string, summary *model.AnalyticsSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, analyticsKeyPrefix+userID, data, c.ttl).Err()
}

func (c *redisAnalyticsCache) InvalidateAnalytics(ctx context.Context, userID string) error {
	return c.client.Del(ctx, analyticsKeyPrefix+userID).Err()
}
