package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the counters in Redis so several instances share one
// allowance. It uses a fixed window: the first attempt starts the window
// and the counter expires with it.
type Redis struct {
	client *redis.Client
	policy Policy
	prefix string
}

func NewRedis(client *redis.Client, p Policy, prefix string) *Redis {
	return &Redis{client: client, policy: p, prefix: prefix}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (l *Redis) Allow(ctx context.Context, key string) (Result, error) {
	counterKey := l.prefix + "count:" + key
	blockKey := l.prefix + "block:" + key

	ttl, err := l.client.TTL(ctx, blockKey).Result()
	if err != nil {
		return Result{}, err
	}
	if ttl > 0 {
		return Result{RetryAfter: ttl}, nil
	}

	attempts, err := l.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return Result{}, err
	}
	if attempts == 1 {
		if err := l.client.Expire(ctx, counterKey, l.policy.Window).Err(); err != nil {
			return Result{}, err
		}
	}
	if attempts > int64(l.policy.Attempts) {
		pipe := l.client.TxPipeline()
		pipe.Set(ctx, blockKey, 1, l.policy.Block)
		pipe.Del(ctx, counterKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return Result{}, err
		}
		return Result{RetryAfter: l.policy.Block}, nil
	}
	return Result{Allowed: true, Remaining: l.policy.Attempts - int(attempts)}, nil
}
