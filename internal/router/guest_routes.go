package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/handler"
	"github.com/iliyamo/hotel-room-service/internal/middleware"
)

// GuestMiddleware bundles what the guest surface is wrapped in.
type GuestMiddleware struct {
	Session    echo.MiddlewareFunc // middleware.RoomSession
	ScanLimit  echo.MiddlewareFunc
	GuestLimit echo.MiddlewareFunc
}

// RegisterGuest registers /scan and /room-service/*.  Only /state and
// /leave work without a granted room; everything else answers 403 with a
// scan prompt.
func RegisterGuest(e *echo.Echo, h *handler.GuestHandler, mw GuestMiddleware) {
	e.GET("/scan", h.Scan, mw.ScanLimit)

	g := e.Group("/room-service", mw.Session, mw.GuestLimit)
	g.GET("/state", h.State)
	g.POST("/leave", h.Leave)

	gated := g.Group("", middleware.RequireRoomSession())
	gated.POST("/order", h.PlaceOrder)
	gated.POST("/messages", h.SendMessage)
	gated.GET("/push", h.PushKey)
	gated.POST("/push", h.Subscribe)
	gated.DELETE("/push", h.Unsubscribe)
}
