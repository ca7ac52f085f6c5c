package ordering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/queue"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func newTestManager(t *testing.T) (*Manager, sqlmock.Sqlmock, *mockPublisher) {
	t.Helper()
	db, sm, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	pub := &mockPublisher{}
	m := NewManager(repository.NewOrderRepo(db), pub, zerolog.Nop())
	m.now = func() time.Time { return fixedNow }
	return m, sm, pub
}

func validatedOrder() *ValidatedOrder {
	return &ValidatedOrder{
		RoomID:        7,
		RoomNumber:    "207",
		PaymentMethod: "room_charge",
		DeliveryAt:    fixedNow.Add(time.Hour),
		Lines: []model.OrderLine{
			{ItemID: 1, ItemName: "Club Sandwich", UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2, LineTotal: decimal.RequireFromString("25.00")},
			{ItemID: 2, ItemName: "Sparkling Water", UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3, LineTotal: decimal.RequireFromString("0.30")},
		},
		Total: decimal.RequireFromString("25.30"),
	}
}

var orderColumns = []string{"id", "room_id", "room_number", "guest_name", "phone", "notes", "payment_method",
	"delivery_at", "total", "status", "created_at", "updated_at"}

func orderRow(id uint64, status model.OrderStatus) *sqlmock.Rows {
	return sqlmock.NewRows(orderColumns).AddRow(id, 7, "207", nil, nil, nil, "cash",
		fixedNow.Add(time.Hour), "25.30", string(status), fixedNow, fixedNow)
}

func TestCreatePersistsHeaderAndLines(t *testing.T) {
	m, sm, pub := newTestManager(t)

	sm.ExpectBegin()
	sm.ExpectExec("INSERT INTO orders").
		WithArgs(uint64(7), "207", nil, nil, nil, "room_charge", sqlmock.AnyArg(), "25.30", "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	sm.ExpectExec("INSERT INTO order_lines").
		WithArgs(uint64(42), uint64(1), "Club Sandwich", "12.50", 2, "25.00",
			uint64(42), uint64(2), "Sparkling Water", "0.10", 3, "0.30").
		WillReturnResult(sqlmock.NewResult(1, 2))
	sm.ExpectCommit()
	pub.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(ev queue.OrderEvent) bool {
		return ev.Type == queue.EventOrderCreated && ev.OrderID == 42 && ev.Total == "25.30"
	})).Return(nil).Once()

	o, err := m.Create(context.Background(), validatedOrder())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), o.ID)
	assert.Equal(t, model.StatusPending, o.Status)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, uint64(42), o.Lines[1].OrderID)
	assert.NoError(t, sm.ExpectationsWereMet())
	pub.AssertExpectations(t)
}

func TestCreateRollsBackWhenLinesFail(t *testing.T) {
	m, sm, pub := newTestManager(t)

	sm.ExpectBegin()
	sm.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(42, 1))
	sm.ExpectExec("INSERT INTO order_lines").WillReturnError(errors.New("deadlock"))
	sm.ExpectRollback()

	o, err := m.Create(context.Background(), validatedOrder())
	require.Error(t, err)
	assert.Nil(t, o)
	assert.NoError(t, sm.ExpectationsWereMet())
	pub.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	m, sm, pub := newTestManager(t)

	sm.ExpectBegin()
	sm.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(9, 1))
	sm.ExpectExec("INSERT INTO order_lines").WillReturnResult(sqlmock.NewResult(1, 2))
	sm.ExpectCommit()
	pub.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	o, err := m.Create(context.Background(), validatedOrder())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), o.ID)
}

func TestSetStatusForwardSkip(t *testing.T) {
	m, sm, pub := newTestManager(t)

	sm.ExpectBegin()
	sm.ExpectQuery(`SELECT .* FROM orders WHERE id = \? FOR UPDATE`).WithArgs(uint64(5)).
		WillReturnRows(orderRow(5, model.StatusPending))
	sm.ExpectExec(`UPDATE orders SET status = \?`).WithArgs("delivered", sqlmock.AnyArg(), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sm.ExpectCommit()
	pub.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(ev queue.OrderEvent) bool {
		return ev.Type == queue.EventOrderStatusChanged && ev.Status == "delivered" && ev.PrevStatus == "pending" && ev.RoomID == 7
	})).Return(nil).Once()

	o, err := m.SetStatus(context.Background(), 5, model.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, o.Status)
	assert.NoError(t, sm.ExpectationsWereMet())
	pub.AssertExpectations(t)
}

func TestSetStatusRejectsIllegalMove(t *testing.T) {
	m, sm, pub := newTestManager(t)

	sm.ExpectBegin()
	sm.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(5)).WillReturnRows(orderRow(5, model.StatusDelivered))
	sm.ExpectRollback()

	_, err := m.SetStatus(context.Background(), 5, model.StatusPreparing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, sm.ExpectationsWereMet())
	pub.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}

func TestSetStatusUnknownOrderAndStatus(t *testing.T) {
	m, sm, _ := newTestManager(t)

	_, err := m.SetStatus(context.Background(), 5, model.OrderStatus("lost"))
	assert.ErrorIs(t, err, ErrUnknownStatus)

	sm.ExpectBegin()
	sm.ExpectQuery(`FOR UPDATE`).WithArgs(uint64(404)).WillReturnRows(sqlmock.NewRows(orderColumns))
	sm.ExpectRollback()

	_, err = m.SetStatus(context.Background(), 404, model.StatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, sm.ExpectationsWereMet())
}

func TestDashboard(t *testing.T) {
	m, sm, _ := newTestManager(t)

	sm.ExpectQuery(`SELECT status, COUNT\(\*\) FROM orders GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 2).AddRow("delivered", 5))
	sm.ExpectQuery(`delivery_at >= \? AND delivery_at <= \?`).
		WithArgs(fixedNow, fixedNow.Add(30*time.Minute)).
		WillReturnRows(orderRow(1, model.StatusPending))
	sm.ExpectQuery(`delivery_at < \?`).WithArgs(fixedNow).
		WillReturnRows(sqlmock.NewRows(orderColumns))

	d, err := m.Dashboard(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Counts[model.StatusPending])
	assert.Equal(t, 0, d.Counts[model.StatusPreparing])
	assert.Len(t, d.Urgent, 1)
	assert.Empty(t, d.PastDue)
	assert.NoError(t, sm.ExpectationsWereMet())
}
