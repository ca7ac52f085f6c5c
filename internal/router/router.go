package router // package router wires handlers and middleware onto the echo instance

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-room-service/internal/handler"
	"github.com/iliyamo/hotel-room-service/internal/middleware"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// liveness, readiness and, when enabled, Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client, metricsEnabled bool) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db, rdb))
	if metricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
}

// RegisterPublic registers the browse-only menu behind the response cache.
func RegisterPublic(e *echo.Echo, m *handler.MenuHandler, cache echo.MiddlewareFunc) {
	e.GET("/menu", m.Public, cache)
}

// RegisterAuth registers the staff login flow under /admin/api.  Login and
// refresh are open; logout and me need a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/admin/api")
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh, limiter)

	auth := g.Group("", middleware.JWTAuth(jwtSecret))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
}
