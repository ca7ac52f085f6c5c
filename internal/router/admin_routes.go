package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/handler"
	"github.com/iliyamo/hotel-room-service/internal/middleware"
	"github.com/iliyamo/hotel-room-service/internal/model"
)

// RegisterAdmin registers the back-office API.  Every route needs a valid
// staff JWT (401) and the ADMIN or STAFF role (403); catalog writes are
// ADMIN only.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/admin/api",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)

	g.GET("/dashboard", h.Dashboard)

	g.GET("/orders", h.ListOrders)
	g.GET("/orders/export", h.ExportOrders)
	g.GET("/orders/:id", h.GetOrder)
	g.PATCH("/orders/:id/status", h.UpdateStatus)

	g.GET("/menu/items", h.ListItems)
	g.GET("/menu/categories", h.ListCategories)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	g.POST("/menu/items", h.CreateItem, adminOnly)
	g.PUT("/menu/items/:id", h.UpdateItem, adminOnly)
	g.DELETE("/menu/items/:id", h.DeactivateItem, adminOnly)

	g.GET("/rooms", h.ListRooms)
	g.GET("/rooms/:id/qr", h.RoomQR)

	g.GET("/messages", h.ListMessages)
	g.POST("/messages/:id/read", h.MarkMessageRead)
}
