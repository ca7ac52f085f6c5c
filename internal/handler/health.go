package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Health is the liveness probe; it never touches dependencies.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports 503 until both MySQL and Redis answer a ping.  Redis is
// required because room sessions live there.
func Ready(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        checks := echo.Map{"mysql": "ok", "redis": "ok"}
        status := http.StatusOK
        if db == nil || db.PingContext(ctx) != nil {
            checks["mysql"] = "down"
            status = http.StatusServiceUnavailable
        }
        if rdb == nil || rdb.Ping(ctx).Err() != nil {
            checks["redis"] = "down"
            status = http.StatusServiceUnavailable
        }
        return c.JSON(status, checks)
    }
}
