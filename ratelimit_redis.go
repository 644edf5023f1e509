package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is the part of a go-redis client RedisRateLimit uses.
// *redis.Client and *redis.ClusterClient satisfy it.
type RedisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisRateLimitConfig configures RedisRateLimit.
type RedisRateLimitConfig struct {
	Client  RedisCounter
	Limit   int64                     // requests per window per key
	Window  time.Duration             // default: 1m
	Prefix  string                    // default: "dispatch:ratelimit:"
	KeyFunc func(ex *Exchange) string // default: RemoteIP
	Logger  *slog.Logger
}

// RedisRateLimit returns a processor that counts requests per key in fixed
// windows stored in Redis, so every instance behind a load balancer shares
// one budget. Over the limit the exchange is answered with 429. When Redis is
// unreachable requests are let through and the error is logged.
func RedisRateLimit(cfg RedisRateLimitConfig) Processor {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "dispatch:ratelimit:"
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RemoteIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return NewProcessor("redis_rate_limit", func(ex *Exchange) {
		if ex.Answered() {
			return
		}

		ctx := ex.Context()
		now := time.Now()
		start := now.Truncate(cfg.Window)
		key := cfg.Prefix + cfg.KeyFunc(ex) + ":" + strconv.FormatInt(start.Unix(), 10)

		n, err := cfg.Client.Incr(ctx, key).Result()
		if err != nil {
			cfg.Logger.WarnContext(ctx, "rate limit counter unavailable", "key", key, "err", err)
			return
		}
		if n == 1 {
			if err := cfg.Client.Expire(ctx, key, cfg.Window).Err(); err != nil {
				cfg.Logger.WarnContext(ctx, "rate limit expiry failed", "key", key, "err", err)
			}
		}
		if n <= cfg.Limit {
			return
		}

		ex.SetHeader("Retry-After", retryAfter(start.Add(cfg.Window).Sub(now)))
		ex.SetError(http.StatusTooManyRequests, &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(http.StatusTooManyRequests),
			Status: http.StatusTooManyRequests,
		})
	}, nil)
}
