package ordering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-room-service/internal/metrics"
	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/queue"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUnknownStatus = errors.New("unknown order status")
)

// EventPublisher delivers order events to the notification feed.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error
}

const publishTimeout = 3 * time.Second

// Manager persists validated orders and applies staff status changes.
type Manager struct {
	orders *repository.OrderRepo
	events EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager wires a Manager.  events may be nil, in which case no order
// events are emitted.
func NewManager(orders *repository.OrderRepo, events EventPublisher, logger zerolog.Logger) *Manager {
	if orders == nil {
		panic("ordering: nil order repository")
	}
	return &Manager{
		orders: orders,
		events: events,
		logger: logger.With().Str("component", "orders").Logger(),
		now:    time.Now,
	}
}

// Create stores the header and every line in one transaction and returns
// the persisted order.  Nothing is written when any insert fails.
func (m *Manager) Create(ctx context.Context, v *ValidatedOrder) (*model.Order, error) {
	if v == nil || len(v.Lines) == 0 {
		return nil, errors.New("ordering: nothing to persist")
	}
	tx, err := m.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o := v.Order(m.now())
	if err := m.orders.CreateTx(ctx, tx, &o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	lines := make([]model.OrderLine, len(v.Lines))
	for i, l := range v.Lines {
		l.OrderID = o.ID
		lines[i] = l
	}
	if err := m.orders.CreateLinesBulkTx(ctx, tx, lines); err != nil {
		return nil, fmt.Errorf("insert order lines: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	o.Lines = lines

	metrics.IncOrderCreated(o.PaymentMethod)
	m.logger.Info().
		Uint64("order_id", o.ID).
		Str("room", o.RoomNumber).
		Str("total", o.Total.StringFixed(2)).
		Int("lines", len(lines)).
		Msg("order created")
	m.publish(ctx, queue.EventOrderCreated, o, "")
	return &o, nil
}

// SetStatus moves order id to status to.  The row is locked for the
// duration so concurrent staff updates are applied one after the other.
func (m *Manager) SetStatus(ctx context.Context, id uint64, to model.OrderStatus) (*model.Order, error) {
	if !to.Valid() {
		return nil, ErrUnknownStatus
	}
	tx, err := m.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := m.orders.LockForUpdateTx(ctx, tx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	from := o.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	now := m.now()
	if err := m.orders.UpdateStatusTx(ctx, tx, id, to, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	o.Status = to
	o.UpdatedAt = now.UTC()

	metrics.IncStatusChange(string(to))
	m.logger.Info().Uint64("order_id", id).Str("from", string(from)).Str("to", string(to)).Msg("order status changed")
	m.publish(ctx, queue.EventOrderStatusChanged, o, from)
	return &o, nil
}

// publish runs after commit; a broker outage never undoes a stored change.
func (m *Manager) publish(ctx context.Context, typ string, o model.Order, prev model.OrderStatus) {
	if m.events == nil {
		return
	}
	ev := queue.OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		RoomID:     o.RoomID,
		RoomNumber: o.RoomNumber,
		Status:     string(o.Status),
		PrevStatus: string(prev),
		Total:      o.Total.StringFixed(2),
		DeliveryAt: o.DeliveryAt.UTC(),
		OccurredAt: m.now().UTC(),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := m.events.PublishOrderEvent(pctx, ev); err != nil {
		m.logger.Warn().Err(err).Uint64("order_id", o.ID).Str("type", typ).Msg("order event not published")
	}
}

// Get loads one order with its lines.
func (m *Manager) Get(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := m.orders.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// List returns a page of orders and the total match count.
func (m *Manager) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int, error) {
	return m.orders.List(ctx, f)
}

// Dashboard is the staff overview: per-status counts, open orders due
// soon and open orders already late.
type Dashboard struct {
	Counts      map[model.OrderStatus]int `json:"counts"`
	Urgent      []model.Order             `json:"urgent"`
	PastDue     []model.Order             `json:"past_due"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// Dashboard builds the overview; window is how far ahead an open order
// counts as urgent.
func (m *Manager) Dashboard(ctx context.Context, window time.Duration) (*Dashboard, error) {
	now := m.now()
	counts, err := m.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := m.orders.ListUrgent(ctx, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	late, err := m.orders.ListPastDue(ctx, now)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Counts: counts, Urgent: urgent, PastDue: late, GeneratedAt: now.UTC()}, nil
}

// DB returns the underlying handle for readiness checks.
func (m *Manager) DB() *sql.DB { return m.orders.DB() }
