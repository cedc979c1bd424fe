// Package ratelimit implements per-sender sliding-window admission
// control over a shared Redis sorted set.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one admission check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces at most Max admissions per Window for each identity.
// State lives in Redis so every process instance shares one window.
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int

	// now is injectable for tests.
	now func() time.Time
}

// New creates a limiter. window and max default to 1s / 1 when zero.
func New(rdb *redis.Client, window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = time.Second
	}
	if max <= 0 {
		max = 1
	}
	return &Limiter{rdb: rdb, window: window, max: max, now: time.Now}
}

// Check admits or denies one event for the identity. Denied events are
// dropped silently by the caller; RetryAfter reports when the window
// frees up.
func (l *Limiter) Check(ctx context.Context, identity string) (Result, error) {
	key := "ratelimit:" + identity
	now := l.now().UnixMilli()
	windowStart := now - l.window.Milliseconds()

	// Prune and count in one round trip.
	pipe := l.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	cardCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(cardCmd.Val())
	if count >= l.max {
		oldest, err := l.rdb.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err != nil {
			return Result{}, fmt.Errorf("rate limit check failed: %w", err)
		}
		oldestTime := now
		if len(oldest) > 0 {
			oldestTime = int64(oldest[0].Score)
		}
		retryAfter := time.Duration(oldestTime+l.window.Milliseconds()-now) * time.Millisecond
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	// Record this admission and keep the key alive slightly longer than
	// the window so idle identities are reclaimed.
	pipe = l.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: strconv.FormatInt(now, 10)})
	pipe.Expire(ctx, key, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit record failed: %w", err)
	}

	return Result{Allowed: true, Remaining: l.max - count - 1}, nil
}
