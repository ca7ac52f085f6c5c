package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/metrics"
	"github.com/iliyamo/hotel-room-service/internal/repository"
	"github.com/iliyamo/hotel-room-service/internal/session"
)

// Scan handles GET /scan?room=<id>&token=<token>.  Whatever happens the
// browser is sent to "/" with 303; a session is granted only for a valid
// token of an active room, and the guest is never told why a scan failed.
func (h *GuestHandler) Scan(c echo.Context) error {
	home := func() error { return c.Redirect(http.StatusSeeOther, "/") }
	reject := func() error {
		metrics.IncRoomScan("rejected")
		return home()
	}

	roomID, err := strconv.ParseUint(c.QueryParam("room"), 10, 64)
	token := c.QueryParam("token")
	if err != nil || roomID == 0 || token == "" {
		return reject()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.Logger.Error().Err(err).Uint64("room_id", roomID).Msg("scan room lookup failed")
		}
		return reject()
	}
	if !room.IsActive || !h.Codec.Verify(room.ID, room.RoomNumber, token) {
		return reject()
	}

	var prev string
	if ck, err := c.Cookie(h.Opts.CookieName); err == nil {
		prev = ck.Value
	}
	sid, _, err := h.Sessions.Grant(ctx, prev, room)
	if err != nil {
		h.Logger.Error().Err(err).Uint64("room_id", room.ID).Msg("session grant failed")
		return home()
	}
	c.SetCookie(session.Cookie(h.Opts.CookieName, sid, h.Opts.CookieSecure))
	metrics.IncRoomScan("granted")

	first, err := h.Sessions.MarkScanned(ctx, sid, room.ID)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("scan flag not stored")
	} else if first {
		if err := h.Rooms.LogScan(ctx, room.ID, h.now()); err != nil {
			h.Logger.Warn().Err(err).Uint64("room_id", room.ID).Msg("scan not logged")
		}
	}
	h.Logger.Info().Str("room", room.RoomNumber).Bool("first_scan", first).Msg("room session granted")
	return home()
}
