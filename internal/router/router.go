package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/handler"    // import the handlers that serve each endpoint
	"github.com/iliyamo/meeting-room-booking/internal/middleware" // import Redis-backed caching and rate limiting
)

// Deps collects what the routes need.  Redis may be nil, in which case the
// cache and rate limit middleware pass every request through.
type Deps struct {
	Bookings      *handler.BookingHandler
	Redis         *redis.Client
	Cache         config.CacheConfig
	RateLimit     config.RateLimitConfig
	OverlapRule   string
	EventsEnabled bool
	Logger        *slog.Logger // used by the middleware; nil means slog.Default()
}

// RegisterRoutes registers every endpoint on the provided Echo instance.
// The health check sits outside the rate limiter and the cache so probes
// always see live state.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.OverlapRule, d.Redis, d.EventsEnabled))

	g := e.Group("",
		middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger),
		middleware.NewRedisCache(d.Cache, d.Redis, d.Logger),
	)
	g.POST("/rooms", d.Bookings.CreateRoom)
	g.POST("/bookings", d.Bookings.CreateBooking)
	g.GET("/rooms/booked", d.Bookings.ListRoomsWithBookings)
	g.GET("/customers/booked", d.Bookings.ListCustomersWithBookings)
	g.GET("/customers/:name/bookings", d.Bookings.ListCustomerBookings)
}
