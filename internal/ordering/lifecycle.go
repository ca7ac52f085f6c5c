package ordering

import (
	"errors"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

// ErrInvalidTransition is returned for status moves the lifecycle forbids,
// including moves to the current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the legal targets of every non-terminal status.  Orders
// move forward and may skip steps; any open order can be cancelled.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusPreparing, model.StatusDelivered, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusPreparing, model.StatusDelivered, model.StatusCancelled},
	model.StatusPreparing: {model.StatusDelivered, model.StatusCancelled},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses staff may move an order to.
func NextStatuses(from model.OrderStatus) []model.OrderStatus {
	next := transitions[from]
	out := make([]model.OrderStatus, len(next))
	copy(out, next)
	return out
}
