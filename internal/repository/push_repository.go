package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

// PushRepo stores Web Push subscriptions keyed by room.
type PushRepo struct{ db *sql.DB }

func NewPushRepo(db *sql.DB) *PushRepo { return &PushRepo{db: db} }

// Upsert registers or re-activates an endpoint for the room.  An endpoint
// still active for another room returns ErrForbidden; an inactive one is
// taken over.
func (r *PushRepo) Upsert(ctx context.Context, s *model.PushSubscription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		owner  uint64
		active bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT room_id, is_active FROM push_subscriptions WHERE endpoint = ? FOR UPDATE`, s.Endpoint).Scan(&owner, &active)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case active && owner != s.RoomID:
		return ErrForbidden
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO push_subscriptions (room_id, endpoint, p256dh, auth, is_active) VALUES (?, ?, ?, ?, 1)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), room_id = VALUES(room_id),
		   p256dh = VALUES(p256dh), auth = VALUES(auth), is_active = 1`,
		s.RoomID, s.Endpoint, s.P256DH, s.Auth)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	s.ID = uint64(id)
	s.IsActive = true
	return nil
}

// Deactivate marks the room's subscription for endpoint inactive.  It
// returns ErrNotFound for unknown endpoints and ErrForbidden when the
// endpoint belongs to another room.
func (r *PushRepo) Deactivate(ctx context.Context, roomID uint64, endpoint string) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT room_id FROM push_subscriptions WHERE endpoint = ?`, endpoint).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != roomID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE push_subscriptions SET is_active = 0 WHERE endpoint = ? AND room_id = ?`, endpoint, roomID)
	return err
}

// ListActiveByRoom returns the subscriptions a room's notifications fan out to.
func (r *PushRepo) ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, endpoint, p256dh, auth, is_active, created_at, updated_at
		 FROM push_subscriptions WHERE room_id = ? AND is_active = 1 ORDER BY id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PushSubscription{}
	for rows.Next() {
		var s model.PushSubscription
		if err := rows.Scan(&s.ID, &s.RoomID, &s.Endpoint, &s.P256DH, &s.Auth, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
