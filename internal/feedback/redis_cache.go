package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

const redisKeyPrefix = "resumiq:feedback:ctx:"

// RedisCache shares request contexts between replicas. Expiry is left to
// Redis key TTLs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (rc *RedisCache) Set(ctx context.Context, reqCtx *models.RequestContext) error {
	data, err := json.Marshal(reqCtx)
	if err != nil {
		return fmt.Errorf("marshal request context: %w", err)
	}
	if err := rc.client.Set(ctx, redisKeyPrefix+reqCtx.RequestID, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (rc *RedisCache) Get(ctx context.Context, requestID string) (*models.RequestContext, error) {
	data, err := rc.client.Get(ctx, redisKeyPrefix+requestID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var reqCtx models.RequestContext
	if err := json.Unmarshal(data, &reqCtx); err != nil {
		return nil, fmt.Errorf("unmarshal request context: %w", err)
	}
	return &reqCtx, nil
}

func (rc *RedisCache) Delete(ctx context.Context, requestID string) error {
	return rc.client.Del(ctx, redisKeyPrefix+requestID).Err()
}

func (rc *RedisCache) Size(ctx context.Context) (int, error) {
	count := 0
	iter := rc.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return count, nil
}

// Ping is used by the readiness check.
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}
