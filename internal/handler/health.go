package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
    "github.com/redis/go-redis/v9"
)

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
    Status      string `json:"status"`      // always "ok" while the process serves requests
    OverlapRule string `json:"overlapRule"` // booking overlap rule in force
    Redis       string `json:"redis"`       // up, down or disabled
    Events      bool   `json:"events"`      // whether booking events are published
}

// Health returns a health‑check handler used by load balancers and
// monitoring systems.  The service itself needs nothing external, so the
// status is 200 even when Redis is down; the body reports which optional
// dependencies are usable.
func Health(overlapRule string, rdb *redis.Client, eventsEnabled bool) echo.HandlerFunc {
    return func(c echo.Context) error {
        st := HealthStatus{Status: "ok", OverlapRule: overlapRule, Redis: "disabled", Events: eventsEnabled}
        if rdb != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
            defer cancel()
            st.Redis = "up"
            if err := rdb.Ping(ctx).Err(); err != nil {
                st.Redis = "down"
            }
        }
        return c.JSON(http.StatusOK, st)
    }
}
