package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

// RoomRepo reads rooms and records QR scans.
type RoomRepo struct{ db *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomCols = `id, room_number, floor, is_active, created_at`

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var (
		r     model.Room
		floor sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.RoomNumber, &floor, &r.IsActive, &r.CreatedAt); err != nil {
		return r, err
	}
	if floor.Valid {
		f := int(floor.Int64)
		r.Floor = &f
	}
	return r, nil
}

// GetByID returns the room or ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return room, ErrNotFound
	}
	return room, err
}

// List returns rooms ordered by number; activeOnly hides disabled rooms.
func (r *RoomRepo) List(ctx context.Context, activeOnly bool) ([]model.Room, error) {
	q := `SELECT ` + roomCols + ` FROM rooms`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY room_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Upsert inserts a room or updates it by room number, filling room.ID.
func (r *RoomRepo) Upsert(ctx context.Context, room *model.Room) error {
	var floor any
	if room.Floor != nil {
		floor = *room.Floor
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_number, floor, is_active) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), floor = VALUES(floor), is_active = VALUES(is_active)`,
		room.RoomNumber, floor, room.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// LogScan appends a scan record.
func (r *RoomRepo) LogScan(ctx context.Context, roomID uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO room_scans (room_id, scanned_at) VALUES (?, ?)`, roomID, at.UTC())
	return err
}
