package dispatch

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the in-process RateLimit processor. Use
// RedisRateLimit when several replicas must share one budget.
type RateLimitConfig struct {
	Rate            float64                   // requests per second
	Burst           int                       // max burst
	KeyFunc         func(ex *Exchange) string // default: RemoteIP
	CleanupInterval time.Duration             // how often to prune idle limiters (default: 1m)
	MaxIdle         time.Duration             // remove limiters idle longer than this (default: 5m)
}

// RateLimit returns a processor that applies a token bucket per key. A
// limited exchange is answered with 429 in the pre-hook, with Retry-After
// set to the whole seconds until the next token.
func RateLimit(cfg RateLimitConfig) Processor {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RemoteIP
	}
	set := &limiterSet{
		limit:    rate.Limit(cfg.Rate),
		burst:    cfg.Burst,
		interval: cfg.CleanupInterval,
		maxIdle:  cfg.MaxIdle,
		entries:  make(map[string]*limiterEntry),
	}
	if set.interval <= 0 {
		set.interval = time.Minute
	}
	if set.maxIdle <= 0 {
		set.maxIdle = 5 * time.Minute
	}

	return NewProcessor("rate_limit", func(ex *Exchange) {
		if ex.Answered() {
			return
		}
		now := time.Now()
		wait, ok := set.take(cfg.KeyFunc(ex), now)
		if ok {
			return
		}
		ex.SetHeader("Retry-After", retryAfter(wait))
		ex.SetError(http.StatusTooManyRequests, &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(http.StatusTooManyRequests),
			Status: http.StatusTooManyRequests,
		})
	}, nil)
}

// RemoteIP returns the client host of the exchange without the port.
func RemoteIP(ex *Exchange) string {
	addr := ex.Request().RemoteAddr
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one limiter per key and prunes idle ones lazily.
type limiterSet struct {
	limit    rate.Limit
	burst    int
	interval time.Duration
	maxIdle  time.Duration

	mu      sync.Mutex
	entries map[string]*limiterEntry
	pruned  time.Time
}

// take consumes a token for key. When none is available it reports how long
// until one is.
func (s *limiterSet) take(key string, now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	if now.Sub(s.pruned) >= s.interval {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.maxIdle {
				delete(s.entries, k)
			}
		}
		s.pruned = now
	}
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0, false
	}
	wait := r.DelayFrom(now)
	if wait == 0 {
		return 0, true
	}
	r.CancelAt(now)
	return wait, false
}

func retryAfter(wait time.Duration) string {
	secs := int64(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
