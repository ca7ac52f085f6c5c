package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/repository"
)

// ListRooms handles GET /admin/api/rooms.
func (h *AdminHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context(), c.QueryParam("active") == "true")
	if err != nil {
		h.Logger.Error().Err(err).Msg("room list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms, "count": len(rooms)})
}

// RoomQR handles GET /admin/api/rooms/:id/qr and returns the URL to print
// into the room's QR code.
func (h *AdminHandler) RoomQR(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		h.Logger.Error().Err(err).Uint64("room_id", id).Msg("room load failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	u, err := h.Codec.ScanURL(h.Opts.BaseURL, room.ID, room.RoomNumber)
	if err != nil {
		h.Logger.Error().Err(err).Msg("scan url build failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid base url"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room": room, "scan_url": u})
}
