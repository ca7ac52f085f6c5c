package handler

// Narrow views of the repositories and services used by handlers, so each
// handler can be exercised with in-memory fakes.

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/repository"
	"github.com/iliyamo/hotel-room-service/internal/session"
)

type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	List(ctx context.Context, activeOnly bool) ([]model.Room, error)
	LogScan(ctx context.Context, roomID uint64, at time.Time) error
}

type SessionStore interface {
	Grant(ctx context.Context, prevSID string, room model.Room) (string, *session.RoomSession, error)
	Clear(ctx context.Context, sid string) error
	MarkScanned(ctx context.Context, sid string, roomID uint64) (bool, error)
}

type MenuReader interface {
	ListItems(ctx context.Context, f repository.ItemFilter) ([]model.CatalogItem, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]model.MenuCategory, error)
}

type MenuWriter interface {
	MenuReader
	GetItem(ctx context.Context, id uint64) (model.CatalogItem, error)
	CreateItem(ctx context.Context, it *model.MenuItem) error
	UpdateItem(ctx context.Context, it *model.MenuItem) error
	SetItemActive(ctx context.Context, id uint64, active bool) error
}

type OrderValidator interface {
	Validate(ctx context.Context, req ordering.Request) (*ordering.ValidatedOrder, *ordering.Rejection, error)
}

type OrderService interface {
	Create(ctx context.Context, v *ordering.ValidatedOrder) (*model.Order, error)
	SetStatus(ctx context.Context, id uint64, to model.OrderStatus) (*model.Order, error)
	Get(ctx context.Context, id uint64) (*model.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int, error)
	Dashboard(ctx context.Context, window time.Duration) (*ordering.Dashboard, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *model.GuestMessage) error
	List(ctx context.Context, unreadOnly bool, limit int) ([]model.GuestMessage, error)
	MarkRead(ctx context.Context, id uint64) error
	CountUnread(ctx context.Context) (int, error)
}

type PushStore interface {
	Upsert(ctx context.Context, s *model.PushSubscription) error
	Deactivate(ctx context.Context, roomID uint64, endpoint string) error
}
