package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.OrderStatus
		want     bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusDelivered, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusPreparing, true},
		{model.StatusPreparing, model.StatusDelivered, true},
		{model.StatusPreparing, model.StatusCancelled, true},
		{model.StatusPending, model.StatusPending, false},
		{model.StatusPreparing, model.StatusConfirmed, false},
		{model.StatusConfirmed, model.StatusPending, false},
		{model.StatusDelivered, model.StatusCancelled, false},
		{model.StatusDelivered, model.StatusPreparing, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusPending, model.OrderStatus("lost"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Empty(t, NextStatuses(model.StatusDelivered))
	assert.Empty(t, NextStatuses(model.StatusCancelled))
	assert.Equal(t, []model.OrderStatus{model.StatusDelivered, model.StatusCancelled}, NextStatuses(model.StatusPreparing))

	next := NextStatuses(model.StatusPending)
	next[0] = model.StatusCancelled
	assert.Equal(t, model.StatusConfirmed, NextStatuses(model.StatusPending)[0], "callers must not mutate the table")
}

func TestEveryOpenStatusCanBeCancelled(t *testing.T) {
	for _, s := range model.AllStatuses {
		assert.Equal(t, s.Open(), CanTransition(s, model.StatusCancelled), s)
	}
}
