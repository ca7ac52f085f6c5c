package model

import "time"

// GuestMessage is a free-text message sent from a room to reception.
type GuestMessage struct {
    ID         uint64    `json:"id"`
    RoomID     uint64    `json:"room_id"`
    RoomNumber string    `json:"room_number"`
    Body       string    `json:"body"`
    IsRead     bool      `json:"is_read"`
    CreatedAt  time.Time `json:"created_at"`
}

// PushSubscription is a browser Web Push registration bound to a room.
// Deactivated rows are kept so an endpoint can be re-enabled in place.
type PushSubscription struct {
    ID        uint64    `json:"id"`
    RoomID    uint64    `json:"room_id"`
    Endpoint  string    `json:"endpoint"`
    P256DH    string    `json:"p256dh"`
    Auth      string    `json:"auth"`
    IsActive  bool      `json:"is_active"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
