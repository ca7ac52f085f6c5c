// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns order events into guest notifications.
package queue

import "time"

// OrdersQueue is the durable queue carrying OrderEvent messages.
const OrdersQueue = "roomservice.orders"

// Event types.
const (
    EventOrderCreated       = "order.created"
    EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order is created or changes status.  It
// carries enough for consumers to log and notify without reading MySQL.
type OrderEvent struct {
    Type       string    `json:"type"`
    OrderID    uint64    `json:"order_id"`
    RoomID     uint64    `json:"room_id"`
    RoomNumber string    `json:"room_number"`
    Status     string    `json:"status"`
    PrevStatus string    `json:"prev_status,omitempty"`
    Total      string    `json:"total"` // decimal string, two places
    DeliveryAt time.Time `json:"delivery_at"`
    OccurredAt time.Time `json:"occurred_at"`
}
