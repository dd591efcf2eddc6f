package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"hapyland/internal/common"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window counter per client IP kept in Redis, so every API
// replica shares the same budget.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimiter(rdb *redis.Client, perMinute int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  perMinute,
		window: time.Minute,
		prefix: "ratelimit:run",
		logger: logger,
		now:    time.Now,
	}
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if rl.rdb == nil || rl.limit <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := rl.now()
		windowStart := now.Truncate(rl.window)
		key := fmt.Sprintf("%s:%s:%d", rl.prefix, clientIP(r), windowStart.Unix())

		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, rl.window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			rl.logger.Warn("rate limiter unavailable, letting request through", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > int64(rl.limit) {
			retryAfter := int(windowStart.Add(rl.window).Sub(now).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			common.RespondWithError(w, common.HTTPStatusFromError(common.ErrRateLimited), "Rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on chi's RealIP having already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
