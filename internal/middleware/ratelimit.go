package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-booking/internal/config"
)

// takeToken refills the bucket at KEYS[1] for the time elapsed since its
// last refill and takes one token if there is one.
//
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_ms.
// Returns {allowed (0|1), tokens left, retry after ms}.
var takeToken = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'last_ms'))
if tokens == nil or last == nil then
  tokens = capacity
  last = now
end
if tokens > capacity then
  tokens = capacity
end

local steps = math.floor(math.max(0, now - last) / interval)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  last = last + steps * interval
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.max(0, interval - (now - last))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_ms', last)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// bucketState is the outcome of one take.
type bucketState struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucket limits request rates per client. Reads and writes draw from
// separate buckets so a burst of listing calls cannot starve booking
// creation, and the write bucket can be sized on its own.
type tokenBucket struct {
	cfg    config.RateLimitConfig
	rdb    *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewTokenBucket returns the rate limiting middleware. With limiting
// disabled or no Redis client every request passes through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	if logger == nil {
		logger = slog.Default()
	}
	tb := &tokenBucket{cfg: cfg.Normalize(), rdb: rdb, logger: logger.With("component", "ratelimit"), now: time.Now}
	return tb.middleware
}

func (tb *tokenBucket) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := rateKey(tb.cfg, c)
		capacity := tb.capacityFor(c.Request().Method)

		st, err := tb.take(c.Request().Context(), key, capacity)
		if err != nil {
			// Redis trouble must not take the API down with it.
			tb.logger.Warn("rate limit check failed", "key", key, "error", err)
			return next(c)
		}

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.Remaining, 10))
		if tb.cfg.Debug {
			h.Set("X-RateLimit-Key", key)
		}
		if st.Allowed {
			return next(c)
		}

		secs := int((st.RetryAfter + time.Second - 1) / time.Second)
		h.Set("Retry-After", strconv.Itoa(secs))
		tb.logger.Debug("request throttled", "key", key, "retry_after", st.RetryAfter)
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":       "too_many_requests",
			"message":     "rate limit exceeded",
			"retry_after": secs,
		})
	}
}

// capacityFor returns the bucket size for requests of the given method.
// The config is normalized, so both capacities are at least one.
func (tb *tokenBucket) capacityFor(method string) int {
	if isWrite(method) {
		return tb.cfg.WriteCapacity
	}
	return tb.cfg.Capacity
}

func (tb *tokenBucket) take(ctx context.Context, key string, capacity int) (bucketState, error) {
	vals, err := takeToken.Run(ctx, tb.rdb, []string{key},
		tb.now().UnixMilli(),
		capacity,
		tb.cfg.RefillTokens,
		tb.cfg.RefillInterval.Milliseconds(),
		tb.cfg.TTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return bucketState{}, err
	}
	if len(vals) != 3 {
		return bucketState{}, fmt.Errorf("token bucket script returned %d values, want 3", len(vals))
	}
	return bucketState{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// rateKey derives the bucket key for the request. Clients are anonymous, so
// buckets are keyed by IP, route or both, plus the read/write class.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	class := "r"
	if isWrite(c.Request().Method) {
		class = "w"
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return strings.Join([]string{cfg.Prefix, class, "ip", ip}, ":")
	case "route":
		return strings.Join([]string{cfg.Prefix, class, "route", route}, ":")
	default: // ip_route
		return strings.Join([]string{cfg.Prefix, class, "ip", ip, "route", route}, ":")
	}
}
