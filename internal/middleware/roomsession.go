package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-room-service/internal/session"
)

const ctxRoomSession = "room_session"

// SessionReader is the part of the session store the middleware needs.
type SessionReader interface {
	Current(ctx context.Context, sid string) (*session.RoomSession, error)
}

// RoomSession resolves the guest's room session from the cookie once per
// request and stores it for SessionContextFrom.  A Redis failure leaves the
// request locked rather than failing it.
func RoomSession(store SessionReader, cookieName string, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sc := &session.Context{}
			if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
				sc.ID = ck.Value
				room, err := store.Current(c.Request().Context(), ck.Value)
				if err != nil {
					logger.Warn().Err(err).Msg("room session lookup failed")
				}
				sc.Room = room
			}
			c.Set(ctxRoomSession, sc)
			return next(c)
		}
	}
}

// SessionContextFrom returns the context stored by RoomSession, or nil when
// the middleware did not run.
func SessionContextFrom(c echo.Context) *session.Context {
	sc, _ := c.Get(ctxRoomSession).(*session.Context)
	return sc
}

// RequireRoomSession stops requests that carry no granted room.  The body
// tells the client to send the guest back to the QR code.
func RequireRoomSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SessionContextFrom(c).Unlocked() {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":  "room_session_required",
					"prompt": "scan_qr",
				})
			}
			return next(c)
		}
	}
}
