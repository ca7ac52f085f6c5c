package handler

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

type fakeRooms struct {
	mu    sync.Mutex
	rooms map[uint64]model.Room
	scans []uint64
}

func (f *fakeRooms) GetByID(_ context.Context, id uint64) (model.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRooms) List(_ context.Context, activeOnly bool) ([]model.Room, error) {
	var out []model.Room
	for _, r := range f.rooms {
		if !activeOnly || r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRooms) LogScan(_ context.Context, roomID uint64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, roomID)
	return nil
}

type fakeMenu struct {
	cats  []model.MenuCategory
	items []model.CatalogItem
}

func (f *fakeMenu) ListItems(_ context.Context, flt repository.ItemFilter) ([]model.CatalogItem, error) {
	var out []model.CatalogItem
	for _, it := range f.items {
		if flt.CategoryID != 0 && it.CategoryID != flt.CategoryID {
			continue
		}
		if flt.Active != nil && it.IsActive != *flt.Active {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeMenu) ListCategories(_ context.Context, activeOnly bool) ([]model.MenuCategory, error) {
	var out []model.MenuCategory
	for _, c := range f.cats {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeMenu) GetItem(_ context.Context, id uint64) (model.CatalogItem, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.CatalogItem{}, repository.ErrNotFound
}

func (f *fakeMenu) CreateItem(_ context.Context, it *model.MenuItem) error {
	it.ID = uint64(len(f.items) + 1)
	f.items = append(f.items, model.CatalogItem{MenuItem: *it, CategoryActive: true})
	return nil
}

func (f *fakeMenu) UpdateItem(_ context.Context, it *model.MenuItem) error {
	for i := range f.items {
		if f.items[i].ID == it.ID {
			f.items[i].MenuItem = *it
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMenu) SetItemActive(_ context.Context, id uint64, active bool) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubValidator struct {
	got ordering.Request
	out *ordering.ValidatedOrder
	rej *ordering.Rejection
	err error
}

func (s *stubValidator) Validate(_ context.Context, req ordering.Request) (*ordering.ValidatedOrder, *ordering.Rejection, error) {
	s.got = req
	return s.out, s.rej, s.err
}

// fakeOrders implements OrderService with overridable behaviour.
type fakeOrders struct {
	created   []*ordering.ValidatedOrder
	orders    []model.Order
	setStatus func(id uint64, to model.OrderStatus) (*model.Order, error)
	listCalls int
}

func (f *fakeOrders) Create(_ context.Context, v *ordering.ValidatedOrder) (*model.Order, error) {
	f.created = append(f.created, v)
	o := v.Order(time.Now())
	o.ID = uint64(len(f.created))
	o.Lines = v.Lines
	return &o, nil
}

func (f *fakeOrders) SetStatus(_ context.Context, id uint64, to model.OrderStatus) (*model.Order, error) {
	return f.setStatus(id, to)
}

func (f *fakeOrders) Get(_ context.Context, id uint64) (*model.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, ordering.ErrOrderNotFound
}

func (f *fakeOrders) List(_ context.Context, flt repository.OrderFilter) ([]model.Order, int, error) {
	f.listCalls++
	start := flt.Offset
	if start > len(f.orders) {
		start = len(f.orders)
	}
	end := start + flt.Limit
	if flt.Limit <= 0 || end > len(f.orders) {
		end = len(f.orders)
	}
	return f.orders[start:end], len(f.orders), nil
}

func (f *fakeOrders) Dashboard(_ context.Context, _ time.Duration) (*ordering.Dashboard, error) {
	counts := map[model.OrderStatus]int{}
	for _, o := range f.orders {
		counts[o.Status]++
	}
	return &ordering.Dashboard{Counts: counts, GeneratedAt: time.Now().UTC()}, nil
}

type fakeMessages struct {
	stored []model.GuestMessage
}

func (f *fakeMessages) Create(_ context.Context, m *model.GuestMessage) error {
	m.ID = uint64(len(f.stored) + 1)
	f.stored = append(f.stored, *m)
	return nil
}

func (f *fakeMessages) List(_ context.Context, unreadOnly bool, _ int) ([]model.GuestMessage, error) {
	var out []model.GuestMessage
	for _, m := range f.stored {
		if !unreadOnly || !m.IsRead {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, id uint64) error {
	for i := range f.stored {
		if f.stored[i].ID == id {
			f.stored[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMessages) CountUnread(_ context.Context) (int, error) {
	n := 0
	for _, m := range f.stored {
		if !m.IsRead {
			n++
		}
	}
	return n, nil
}

type fakePush struct {
	subs []model.PushSubscription
}

func (f *fakePush) Upsert(_ context.Context, s *model.PushSubscription) error {
	for i := range f.subs {
		if f.subs[i].Endpoint != s.Endpoint {
			continue
		}
		if f.subs[i].IsActive && f.subs[i].RoomID != s.RoomID {
			return repository.ErrForbidden
		}
		s.ID, s.IsActive = f.subs[i].ID, true
		f.subs[i] = *s
		return nil
	}
	s.ID, s.IsActive = uint64(len(f.subs)+1), true
	f.subs = append(f.subs, *s)
	return nil
}

func (f *fakePush) Deactivate(_ context.Context, roomID uint64, endpoint string) error {
	for i := range f.subs {
		if f.subs[i].Endpoint == endpoint {
			if f.subs[i].RoomID != roomID {
				return repository.ErrForbidden
			}
			f.subs[i].IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}
