package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/utils"
)

type OrderCreator interface {
	Create(ctx context.Context, v *ordering.ValidatedOrder) (*model.Order, error)
}

type MessageSender interface {
	Create(ctx context.Context, m *model.GuestMessage) error
}

// GuestOptions are the guest-facing settings taken from configuration.
type GuestOptions struct {
	CookieName     string
	CookieSecure   bool
	PushPublicKey  string
	PaymentMethods []string
	MinLead        time.Duration
}

// GuestHandler serves the QR entry point and the room-service API used by
// the in-room browser.  Every action except /scan and /state relies on the
// room session resolved by middleware.RoomSession.
type GuestHandler struct {
	Rooms     RoomStore
	Sessions  SessionStore
	Codec     *utils.RoomTokenCodec
	Menu      MenuReader
	Validator OrderValidator
	Orders    OrderCreator
	Messages  MessageSender
	Push      PushStore
	Fmt       *Formatter
	Opts      GuestOptions
	Logger    zerolog.Logger
	now       func() time.Time
}

func NewGuestHandler(rooms RoomStore, sessions SessionStore, codec *utils.RoomTokenCodec, menu MenuReader,
	validator OrderValidator, orders OrderCreator, messages MessageSender, push PushStore,
	f *Formatter, opts GuestOptions, logger zerolog.Logger) *GuestHandler {
	if rooms == nil || sessions == nil || codec == nil || menu == nil || validator == nil ||
		orders == nil || messages == nil || push == nil || f == nil {
		panic("nil dependency passed to NewGuestHandler")
	}
	if opts.CookieName == "" {
		opts.CookieName = "rs_session"
	}
	return &GuestHandler{
		Rooms: rooms, Sessions: sessions, Codec: codec, Menu: menu,
		Validator: validator, Orders: orders, Messages: messages, Push: push,
		Fmt: f, Opts: opts,
		Logger: logger.With().Str("component", "guest").Logger(),
		now:    time.Now,
	}
}
