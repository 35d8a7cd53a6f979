package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/annedfinds/storefront-notify/internal/config"
)

// ContactLimiter caps contact form submissions per key in a fixed window
// using a Redis counter.
type ContactLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewContactLimiter creates a ContactLimiter. A nil client disables limiting.
func NewContactLimiter(client *redis.Client, cfg config.RateLimitConfig) *ContactLimiter {
	return &ContactLimiter{
		client: client,
		limit:  cfg.ContactLimit,
		window: cfg.ContactWindow,
	}
}

// NewRedisClient builds a Redis client from the rate limit configuration.
// It returns nil when no address is configured.
func NewRedisClient(cfg config.RateLimitConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Allow counts one submission for key and reports whether it is within the
// limit. When denied, the returned duration is the time left in the window.
func (l *ContactLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		// No Redis client configured; skip rate limiting.
		return true, 0, nil
	}

	redisKey := fmt.Sprintf("ratelimit:contact:%s", key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("count contact submission: %w", err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		// First hit in this window, or a key that lost its expiry.
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("set contact window: %w", err)
		}
		remaining = l.window
	}

	if incr.Val() > int64(l.limit) {
		return false, remaining, nil
	}
	return true, 0, nil
}
