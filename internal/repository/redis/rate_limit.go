package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bitlane/admin-iam/internal/core/port"
)

// RateLimitRepository implements a sliding window limiter over Redis sorted
// sets. Each attempt is a member scored by its nanosecond timestamp; counting
// the window is a range query over the set.
type RateLimitRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRateLimitRepository constructs a limiter using the provided Redis client.
func NewRateLimitRepository(client *redis.Client, keyPrefix string) *RateLimitRepository {
	return &RateLimitRepository{client: client, keyPrefix: keyPrefix}
}

// Allow records the attempt and reports whether the caller stays within
// limit for the window ending at the supplied instant. The attempt is
// recorded even when rejected, so hammering a limited endpoint keeps the
// window full.
func (r *RateLimitRepository) Allow(ctx context.Context, identifier string, limit int, window time.Duration, at time.Time) (bool, error) {
	if window <= 0 {
		return false, errors.New("window must be positive")
	}
	if limit <= 0 {
		return false, nil
	}

	key := r.key(identifier)
	threshold := fmt.Sprintf("%d", at.Add(-window).UnixNano())

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", threshold)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixNano()), Member: at.UnixNano()})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limit pipeline: %w", err)
	}

	return card.Val() <= int64(limit), nil
}

func (r *RateLimitRepository) key(identifier string) string {
	if r.keyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", r.keyPrefix, identifier)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
