package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.  Legal moves between
// states live in the ordering package.
type OrderStatus string

const (
    StatusPending   OrderStatus = "pending"
    StatusConfirmed OrderStatus = "confirmed"
    StatusPreparing OrderStatus = "preparing"
    StatusDelivered OrderStatus = "delivered"
    StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusDelivered, StatusCancelled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
    for _, v := range AllStatuses {
        if v == s {
            return true
        }
    }
    return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool { return s == StatusDelivered || s == StatusCancelled }

// Open reports whether the order still needs staff attention.
func (s OrderStatus) Open() bool { return s.Valid() && !s.Terminal() }

// Order is a persisted room-service order header.  Room fields come from the
// guest's room session, never from the request body.
//
// Fields:
//  ID            – primary key identifier.
//  RoomID        – room the order is delivered to.
//  RoomNumber    – snapshot of the room number at order time.
//  GuestName     – optional contact name.
//  Phone         – optional contact phone.
//  Notes         – optional free text for the kitchen.
//  PaymentMethod – one of the configured payment methods.
//  DeliveryAt    – requested delivery instant (UTC).
//  Total         – sum of line totals.
//  Status        – lifecycle state.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last status change.
//  Lines         – order lines; loaded on detail reads only.
type Order struct {
    ID            uint64          `json:"id"`          // orders.id
    RoomID        uint64          `json:"room_id"`     // orders.room_id
    RoomNumber    string          `json:"room_number"` // orders.room_number
    GuestName     string          `json:"guest_name,omitempty"`
    Phone         string          `json:"phone,omitempty"`
    Notes         string          `json:"notes,omitempty"`
    PaymentMethod string          `json:"payment_method"`
    DeliveryAt    time.Time       `json:"delivery_at"`
    Total         decimal.Decimal `json:"total"`
    Status        OrderStatus     `json:"status"`
    CreatedAt     time.Time       `json:"created_at"`
    UpdatedAt     time.Time       `json:"updated_at"`
    Lines         []OrderLine     `json:"lines,omitempty"`
}

// OrderLine snapshots the item name and price at order time so later
// catalog edits do not rewrite history.
type OrderLine struct {
    ID        uint64          `json:"id"`
    OrderID   uint64          `json:"order_id"`
    ItemID    uint64          `json:"item_id"`
    ItemName  string          `json:"item_name"`
    UnitPrice decimal.Decimal `json:"unit_price"`
    Quantity  int             `json:"quantity"`
    LineTotal decimal.Decimal `json:"line_total"`
}
