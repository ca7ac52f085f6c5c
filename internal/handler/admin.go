package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/utils"
)

// AdminOptions are the back-office settings taken from configuration.
type AdminOptions struct {
	BaseURL      string
	UrgentWindow time.Duration
}

// AdminHandler serves the staff back office: orders, dashboard, catalog,
// rooms and guest messages.  Routes are behind JWTAuth and RequireRole.
type AdminHandler struct {
	Orders   OrderService
	Menu     MenuWriter
	Rooms    RoomStore
	Messages MessageStore
	Codec    *utils.RoomTokenCodec
	Fmt      *Formatter
	Opts     AdminOptions
	Logger   zerolog.Logger
}

func NewAdminHandler(orders OrderService, menu MenuWriter, rooms RoomStore, messages MessageStore,
	codec *utils.RoomTokenCodec, f *Formatter, opts AdminOptions, logger zerolog.Logger) *AdminHandler {
	if orders == nil || menu == nil || rooms == nil || messages == nil || codec == nil || f == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if opts.UrgentWindow <= 0 {
		opts.UrgentWindow = 30 * time.Minute
	}
	return &AdminHandler{
		Orders: orders, Menu: menu, Rooms: rooms, Messages: messages,
		Codec: codec, Fmt: f, Opts: opts,
		Logger: logger.With().Str("component", "admin").Logger(),
	}
}

var errInvalidID = errors.New("invalid id")

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// orderView decorates an order with labels and formatted fields for the
// back-office UI.
type orderView struct {
	model.Order
	StatusLabel    string              `json:"status_label"`
	TotalFormatted string              `json:"total_formatted"`
	DeliveryLocal  string              `json:"delivery_local"`
	CreatedLocal   string              `json:"created_local"`
	NextStatuses   []model.OrderStatus `json:"next_statuses"`
}

func (h *AdminHandler) view(o model.Order) orderView {
	return orderView{
		Order:          o,
		StatusLabel:    statusLabel(o.Status),
		TotalFormatted: h.Fmt.Money(o.Total),
		DeliveryLocal:  h.Fmt.Time(o.DeliveryAt),
		CreatedLocal:   h.Fmt.Time(o.CreatedAt),
		NextStatuses:   ordering.NextStatuses(o.Status),
	}
}

func (h *AdminHandler) views(orders []model.Order) []orderView {
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = h.view(o)
	}
	return out
}

// labels is the status label table sent alongside list responses.
func labels() map[model.OrderStatus]string {
	out := make(map[model.OrderStatus]string, len(statusLabels))
	for k, v := range statusLabels {
		out[k] = v
	}
	return out
}
