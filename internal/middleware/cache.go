package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-booking/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cachedResponse is the value stored under a cache key.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// responseCache serves repeated listing requests from Redis.
//
// Every key embeds a generation number kept at "<prefix>:gen". A successful
// write bumps the generation, so entries stored before the bump are never
// read again and simply expire. A read captures the generation before it
// runs the handler; if a write lands while the handler is running, the
// result is stored under the old generation and is unreachable.
type responseCache struct {
	cfg     config.CacheConfig
	rdb     *redis.Client
	logger  *slog.Logger
	methods map[string]bool
	ttl     time.Duration
}

// NewRedisCache returns the response cache middleware. With caching disabled
// or no Redis client every request passes straight through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, logger *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	if logger == nil {
		logger = slog.Default()
	}
	rc := &responseCache{
		cfg:     cfg,
		rdb:     rdb,
		logger:  logger.With("component", "cache"),
		methods: cfg.MethodSet(),
		ttl:     cfg.TTL,
	}
	if rc.ttl <= 0 {
		rc.ttl = 30 * time.Second
	}
	return rc.middleware
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func (rc *responseCache) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		method := strings.ToUpper(c.Request().Method)
		if rc.methods[method] {
			return rc.serve(c, next)
		}
		if err := next(c); err != nil {
			return err
		}
		// A rejected write (e.g. a booking conflict) changed nothing.
		if isWrite(method) && c.Response().Status < http.StatusBadRequest {
			rc.invalidate(c.Request().Context())
		}
		return nil
	}
}

func (rc *responseCache) serve(c echo.Context, next echo.HandlerFunc) error {
	ctx := c.Request().Context()
	gen, err := rc.generation(ctx)
	if err != nil {
		rc.logger.Warn("read cache generation failed", "error", err)
		return next(c)
	}
	key := cacheKey(rc.cfg, c, gen)

	if hit, ok := rc.lookup(ctx, key); ok {
		return replay(c, hit)
	}

	cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(rc.cfg.MaxBodyBytes)}
	c.Response().Writer = cw
	c.Response().Header().Set("X-Cache", "MISS")
	if err := next(c); err != nil {
		return err
	}
	if cw.status != http.StatusOK || cw.overflow {
		return nil
	}
	rc.store(key, cachedResponse{
		Status: cw.status,
		Header: c.Response().Header().Clone(),
		Body:   cw.buf.Bytes(),
	})
	return nil
}

func (rc *responseCache) generationKey() string { return rc.cfg.Prefix + ":gen" }

// generation returns the current cache generation; zero until the first write.
func (rc *responseCache) generation(ctx context.Context) (int64, error) {
	gen, err := rc.rdb.Get(ctx, rc.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (rc *responseCache) lookup(ctx context.Context, key string) (cachedResponse, bool) {
	bs, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rc.logger.Warn("cache lookup failed", "key", key, "error", err)
		}
		return cachedResponse{}, false
	}
	var hit cachedResponse
	if err := json.Unmarshal(bs, &hit); err != nil || hit.Status == 0 {
		return cachedResponse{}, false
	}
	return hit, true
}

func (rc *responseCache) store(key string, resp cachedResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		rc.logger.Warn("encode cached response failed", "key", key, "error", err)
		return
	}
	// Detached from the request so a client hanging up does not drop the entry.
	if err := rc.rdb.Set(context.Background(), key, payload, rc.ttl).Err(); err != nil {
		rc.logger.Warn("cache store failed", "key", key, "error", err)
	}
}

// invalidate moves every reader to a fresh generation.
func (rc *responseCache) invalidate(ctx context.Context) {
	if err := rc.rdb.Incr(context.WithoutCancel(ctx), rc.generationKey()).Err(); err != nil {
		rc.logger.Warn("cache invalidation failed", "error", err)
	}
}

func replay(c echo.Context, hit cachedResponse) error {
	h := c.Response().Header()
	for k, vals := range hit.Header {
		if strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		h[k] = append([]string(nil), vals...)
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(hit.Status)
	_, err := c.Response().Write(hit.Body)
	return err
}

// cacheKey identifies a cached response. The path is the one actually
// requested, so /customers/alice/bookings and /customers/bob/bookings never
// share an entry even though they match the same route.
func cacheKey(cfg config.CacheConfig, c echo.Context, gen int64) string {
	r := c.Request()
	path := r.URL.EscapedPath()

	var tail string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		tail = path
	case "method_route":
		tail = r.Method + " " + path
	case "method_route_query":
		tail = r.Method + " " + path + "?" + r.URL.RawQuery
	default: // route_query
		tail = path + "?" + r.URL.RawQuery
	}
	return fmt.Sprintf("%s:g%d:%x", cfg.Prefix, gen, sha1.Sum([]byte(tail)))
}

// captureWriter copies what the handler writes, up to limit bytes, while
// forwarding everything to the client. overflow is set once the body no
// longer fits; such responses are not cached.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int64
	overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflow {
		if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
			cw.overflow = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

func isWrite(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
