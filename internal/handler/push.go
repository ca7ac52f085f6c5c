package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/middleware"
	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

// pushSubscriptionReq mirrors the browser's PushSubscription.toJSON().
type pushSubscriptionReq struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256DH string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func validEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}

// PushKey handles GET /room-service/push.
func (h *GuestHandler) PushKey(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"public_key": h.Opts.PushPublicKey})
}

// Subscribe handles POST /room-service/push, storing the subscription for
// the session's room.
func (h *GuestHandler) Subscribe(c echo.Context) error {
	sc := middleware.SessionContextFrom(c)
	var req pushSubscriptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Endpoint = strings.TrimSpace(req.Endpoint)
	if !validEndpoint(req.Endpoint) || req.Keys.P256DH == "" || req.Keys.Auth == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint and keys required"})
	}
	sub := &model.PushSubscription{
		RoomID:   sc.Room.RoomID,
		Endpoint: req.Endpoint,
		P256DH:   req.Keys.P256DH,
		Auth:     req.Keys.Auth,
	}
	err := h.Push.Upsert(c.Request().Context(), sub)
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		h.Logger.Error().Err(err).Msg("push subscription not stored")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "id": sub.ID})
}

// Unsubscribe handles DELETE /room-service/push.  A room may only
// deactivate its own subscriptions.
func (h *GuestHandler) Unsubscribe(c echo.Context) error {
	sc := middleware.SessionContextFrom(c)
	var req pushSubscriptionReq
	_ = c.Bind(&req)
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.QueryParam("endpoint"))
	}
	if endpoint == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endpoint required"})
	}
	err := h.Push.Deactivate(c.Request().Context(), sc.Room.RoomID, endpoint)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		h.Logger.Error().Err(err).Msg("push unsubscribe failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
}
