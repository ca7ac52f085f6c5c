package model

import "time"

// Room is a physical hotel room.  Each room has a printed QR code whose
// token is derived from ID and RoomNumber, so renumbering a room
// invalidates its old code.
//
// Fields:
//  ID         – primary key identifier.
//  RoomNumber – human-facing number printed on the door.
//  Floor      – optional floor number.
//  IsActive   – inactive rooms cannot start a session.
//  CreatedAt  – creation timestamp.
type Room struct {
    ID         uint64    `json:"id"`          // rooms.id
    RoomNumber string    `json:"room_number"` // rooms.room_number
    Floor      *int      `json:"floor,omitempty"`
    IsActive   bool      `json:"is_active"`
    CreatedAt  time.Time `json:"created_at"`
}
