package handler

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-service/internal/metrics"
	"github.com/iliyamo/hotel-room-service/internal/middleware"
	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/session"
)

const maxMessageLen = 1000

// State handles GET /room-service/state.  Without a room session the UI
// is locked and told to ask for a QR scan.
func (h *GuestHandler) State(c echo.Context) error {
	sc := middleware.SessionContextFrom(c)
	if !sc.Unlocked() {
		return c.JSON(http.StatusOK, echo.Map{"locked": true, "prompt": "scan_qr"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := h.now()
	cats, err := loadMenu(ctx, h.Menu, 0, now, h.Fmt)
	if err != nil {
		h.Logger.Error().Err(err).Msg("menu load failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"locked":            false,
		"room_number":       sc.Room.RoomNumber,
		"categories":        cats,
		"payment_methods":   h.Opts.PaymentMethods,
		"earliest_delivery": h.Fmt.Time(now.Add(h.Opts.MinLead)),
	})
}

// PlaceOrder handles POST /room-service/order.  The room always comes from
// the session; a room id in the form is ignored.
func (h *GuestHandler) PlaceOrder(c echo.Context) error {
	sc := middleware.SessionContextFrom(c)
	if action := c.FormValue("action"); action != "" && action != "place_order" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}
	req := ordering.Request{
		RoomID:        sc.Room.RoomID,
		RoomNumber:    sc.Room.RoomNumber,
		Items:         c.FormValue("items"),
		PaymentMethod: c.FormValue("payment_method"),
		Delivery:      c.FormValue("delivery_datetime"),
		GuestName:     c.FormValue("guest_name"),
		Phone:         c.FormValue("phone"),
		Notes:         c.FormValue("notes"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	v, rej, err := h.Validator.Validate(ctx, req)
	if err != nil {
		h.Logger.Error().Err(err).Str("room", req.RoomNumber).Msg("order validation failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
	if rej != nil {
		metrics.IncOrderRejected(string(rej.Kind))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"ok":     false,
			"kind":   rej.Kind,
			"issues": rej.Issues,
		})
	}

	o, err := h.Orders.Create(ctx, v)
	if err != nil {
		h.Logger.Error().Err(err).Str("room", req.RoomNumber).Msg("order not stored")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ok":              true,
		"order_id":        o.ID,
		"status":          o.Status,
		"status_label":    statusLabel(o.Status),
		"total":           o.Total.StringFixed(2),
		"total_formatted": h.Fmt.Money(o.Total),
		"delivery_at":     h.Fmt.Time(o.DeliveryAt),
		"lines":           o.Lines,
		"dropped_lines":   v.Dropped,
	})
}

// Leave handles POST /room-service/leave: the session is dropped and the
// cookie expired, locking the UI until the next scan.
func (h *GuestHandler) Leave(c echo.Context) error {
	if sc := middleware.SessionContextFrom(c); sc != nil && sc.ID != "" {
		if err := h.Sessions.Clear(c.Request().Context(), sc.ID); err != nil {
			h.Logger.Warn().Err(err).Msg("session clear failed")
		}
	}
	c.SetCookie(session.ExpiredCookie(h.Opts.CookieName, h.Opts.CookieSecure))
	return c.JSON(http.StatusOK, echo.Map{"locked": true, "prompt": "scan_qr"})
}

// SendMessage handles POST /room-service/messages with form field "message".
func (h *GuestHandler) SendMessage(c echo.Context) error {
	sc := middleware.SessionContextFrom(c)
	body := strings.TrimSpace(c.FormValue("message"))
	if body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}
	if utf8.RuneCountInString(body) > maxMessageLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message too long"})
	}
	m := &model.GuestMessage{RoomID: sc.Room.RoomID, RoomNumber: sc.Room.RoomNumber, Body: body, CreatedAt: h.now().UTC()}
	if err := h.Messages.Create(c.Request().Context(), m); err != nil {
		h.Logger.Error().Err(err).Str("room", sc.Room.RoomNumber).Msg("message not stored")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "id": m.ID})
}
