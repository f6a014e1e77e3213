package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter is the whole number of seconds until the window resets.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.Reset.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// Limiter is a sliding-window limiter over Redis sorted sets. Each event is a
// member scored by its timestamp; members older than the window are trimmed
// before counting. A nil client allows everything.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow records an event for key and reports whether it fits in the window.
// Rejected events still count, so a client hammering the endpoint stays
// limited until it backs off for a full window.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	now := time.Now()
	d := Decision{Allowed: true, Limit: max, Remaining: max, Reset: now.Add(window)}
	if l.Client == nil || max <= 0 || window <= 0 {
		return d, nil
	}

	redisKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	card := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Limit: max, Reset: d.Reset}, err
	}

	current := int(card.Val())
	d.Allowed = current <= max
	d.Remaining = max - current
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	return d, nil
}
