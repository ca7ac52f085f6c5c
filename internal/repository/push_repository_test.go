package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

func newPushRepo(t *testing.T) (*PushRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, sm, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPushRepo(db), sm
}

func subscription(room uint64) *model.PushSubscription {
	return &model.PushSubscription{RoomID: room, Endpoint: "https://push.example.com/abc", P256DH: "key", Auth: "secret"}
}

func TestPushUpsertNewEndpoint(t *testing.T) {
	r, sm := newPushRepo(t)
	sm.ExpectBegin()
	sm.ExpectQuery("SELECT room_id, is_active FROM push_subscriptions").
		WithArgs("https://push.example.com/abc").
		WillReturnError(sql.ErrNoRows)
	sm.ExpectExec("INSERT INTO push_subscriptions").
		WithArgs(uint64(7), "https://push.example.com/abc", "key", "secret").
		WillReturnResult(sqlmock.NewResult(11, 1))
	sm.ExpectCommit()

	s := subscription(7)
	require.NoError(t, r.Upsert(context.Background(), s))
	assert.Equal(t, uint64(11), s.ID)
	assert.True(t, s.IsActive)
	assert.NoError(t, sm.ExpectationsWereMet())
}

func TestPushUpsertActiveInOtherRoom(t *testing.T) {
	r, sm := newPushRepo(t)
	sm.ExpectBegin()
	sm.ExpectQuery("SELECT room_id, is_active FROM push_subscriptions").
		WithArgs("https://push.example.com/abc").
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "is_active"}).AddRow(3, true))
	sm.ExpectRollback()

	err := r.Upsert(context.Background(), subscription(7))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, sm.ExpectationsWereMet())
}

func TestPushUpsertTakesOverInactive(t *testing.T) {
	r, sm := newPushRepo(t)
	sm.ExpectBegin()
	sm.ExpectQuery("SELECT room_id, is_active FROM push_subscriptions").
		WithArgs("https://push.example.com/abc").
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "is_active"}).AddRow(3, false))
	sm.ExpectExec("INSERT INTO push_subscriptions").
		WithArgs(uint64(7), "https://push.example.com/abc", "key", "secret").
		WillReturnResult(sqlmock.NewResult(5, 2))
	sm.ExpectCommit()

	s := subscription(7)
	require.NoError(t, r.Upsert(context.Background(), s))
	assert.Equal(t, uint64(5), s.ID)
	assert.NoError(t, sm.ExpectationsWereMet())
}
