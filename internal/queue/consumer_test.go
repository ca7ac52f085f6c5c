package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

type mockSubs struct{ mock.Mock }

func (m *mockSubs) ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.PushSubscription, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]model.PushSubscription), args.Error(1)
}

type mockPusher struct{ mock.Mock }

func (m *mockPusher) Push(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	return m.Called(ctx, sub, payload).Error(0)
}

func event(t *testing.T, ev OrderEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandleStatusChangeFansOutToRoom(t *testing.T) {
	dir := t.TempDir()
	subs := &mockSubs{}
	pusher := &mockPusher{}
	c := NewConsumer("", dir, subs, pusher, zerolog.New(io.Discard))

	list := []model.PushSubscription{{ID: 1, RoomID: 7}, {ID: 2, RoomID: 7}}
	subs.On("ListActiveByRoom", mock.Anything, uint64(7)).Return(list, nil)
	pusher.On("Push", mock.Anything, list[0], mock.Anything).Return(errors.New("gone"))
	pusher.On("Push", mock.Anything, list[1], mock.Anything).Return(nil)

	err := c.handleMessage(context.Background(), event(t, OrderEvent{
		Type: EventOrderStatusChanged, OrderID: 11, RoomID: 7, RoomNumber: "107",
		Status: "preparing", PrevStatus: "confirmed", OccurredAt: time.Now(),
	}))
	require.NoError(t, err, "one failed push must not fail the message")
	pusher.AssertNumberOfCalls(t, "Push", 2)

	var payload PushPayload
	require.NoError(t, json.Unmarshal(pusher.Calls[1].Arguments.Get(2).([]byte), &payload))
	assert.Equal(t, uint64(11), payload.OrderID)
	assert.Equal(t, "preparing", payload.Status)

	audit, err := os.ReadFile(filepath.Join(dir, "orders.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), "order.status_changed | order_id=11")
	assert.Contains(t, string(audit), "from=confirmed")
}

func TestHandleCreatedOnlyAudits(t *testing.T) {
	dir := t.TempDir()
	subs := &mockSubs{}
	pusher := &mockPusher{}
	c := NewConsumer("", dir, subs, pusher, zerolog.New(io.Discard))

	err := c.handleMessage(context.Background(), event(t, OrderEvent{
		Type: EventOrderCreated, OrderID: 3, RoomID: 1, RoomNumber: "101", Status: "pending",
		Total: "24.50", DeliveryAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), OccurredAt: time.Now(),
	}))
	require.NoError(t, err)
	subs.AssertNotCalled(t, "ListActiveByRoom", mock.Anything, mock.Anything)

	audit, err := os.ReadFile(filepath.Join(dir, "orders.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), "total=24.50")
}

func TestHandleRejectsBadPayload(t *testing.T) {
	c := NewConsumer("", t.TempDir(), nil, nil, zerolog.New(io.Discard))
	assert.Error(t, c.handleMessage(context.Background(), []byte("{")))
	assert.Error(t, c.handleMessage(context.Background(), []byte(`{"type":"order.created"}`)))
}
